package hospital

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/hospital"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Handler struct {
	service hospital.HospitalServicer
}

func NewHandler(service hospital.HospitalServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public hospital catalogue.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	hospitals := r.Group("/hospitals")
	{
		hospitals.GET("", h.ListHospitals)
		hospitals.GET("/:id", h.GetHospital)
		hospitals.GET("/:id/branches", h.ListBranches)
		hospitals.GET("/:id/departments", h.ListDepartments)
	}
	r.GET("/branches/:id/services", h.ListServices)
}

func (h *Handler) ListHospitals(c *gin.Context) {
	var filters model.HospitalFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	filters.Pagination = filters.Pagination.Normalize()

	hospitals, total, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, hospitals, filters.Page, filters.PageSize, total)
}

func (h *Handler) GetHospital(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	hosp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, hosp)
}

func (h *Handler) ListBranches(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	branches, err := h.service.ListBranches(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, branches)
}

func (h *Handler) ListDepartments(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	departments, err := h.service.ListDepartments(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, departments)
}

func (h *Handler) ListServices(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	services, err := h.service.ListServices(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, services)
}
