package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/patient"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Handler struct {
	service patient.PatientServicer
}

func NewHandler(service patient.PatientServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	me := r.Group("/patients/me", middleware.RequireRole(model.RolePatient))
	{
		me.GET("/profile", h.GetProfile)
		me.PUT("/profile", h.UpsertProfile)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	profile, err := h.service.GetProfile(c.Request.Context(), sess.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) UpsertProfile(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	var req model.UpsertPatientProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	profile, err := h.service.UpsertProfile(c.Request.Context(), sess.UserID, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}
