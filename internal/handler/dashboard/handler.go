package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/service/dashboard"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Handler struct {
	service dashboard.DashboardServicer
}

func NewHandler(service dashboard.DashboardServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", middleware.RequireClinic(), h.GetSummary)
}

func (h *Handler) GetSummary(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	var req dashboard.Request
	if req.BranchID, ok = handler.QueryID(c, "branch_id"); !ok {
		return
	}
	if req.DoctorID, ok = handler.QueryID(c, "doctor_id"); !ok {
		return
	}
	date, ok := handler.QueryDate(c, "date")
	if !ok {
		return
	}
	if date != nil {
		req.Date = *date
	}

	summary, err := h.service.Summary(c.Request.Context(), sess, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, summary)
}
