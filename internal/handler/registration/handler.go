package registration

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/registration"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Handler struct {
	service registration.RegistrationServicer
}

func NewHandler(service registration.RegistrationServicer) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the onboarding submissions.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	registrations := r.Group("/registrations")
	{
		registrations.POST("/doctors", h.SubmitDoctor)
		registrations.POST("/hospitals", h.SubmitHospital)
	}
}

// RegisterRoutes mounts the admin review queue.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	registrations := r.Group("/registrations", middleware.RequireRole(model.RoleAdmin))
	{
		registrations.GET("", h.ListApplications)
		registrations.POST("/:kind/:id/decision", h.Decide)
	}
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
}

func (h *Handler) SubmitDoctor(c *gin.Context) {
	var form registration.DoctorForm
	if !handler.BindJSON(c, &form) {
		return
	}
	app, err := h.service.SubmitDoctor(c.Request.Context(), form)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, app)
}

func (h *Handler) SubmitHospital(c *gin.Context) {
	var form registration.HospitalForm
	if !handler.BindJSON(c, &form) {
		return
	}
	app, err := h.service.SubmitHospital(c.Request.Context(), form)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, app)
}

func (h *Handler) ListApplications(c *gin.Context) {
	kind := model.ApplicationKind(c.DefaultQuery("kind", string(model.ApplicationKindDoctor)))
	status := model.ApplicationStatus(c.Query("status"))
	switch status {
	case "", model.ApplicationStatusPending, model.ApplicationStatusApproved, model.ApplicationStatusRejected:
	default:
		httputil.RespondWithError(c, apperrors.Validation("unknown status "+string(status)))
		return
	}

	apps, err := h.service.ListApplications(c.Request.Context(), kind, status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apps)
}

func (h *Handler) Decide(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req decisionRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	kind := model.ApplicationKind(c.Param("kind"))
	if err := h.service.Decide(c.Request.Context(), kind, id, req.Decision == "approve", sess.UserID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": id, "decision": req.Decision})
}
