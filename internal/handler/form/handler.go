package form

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/form"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Handler struct {
	service form.FormServicer
}

func NewHandler(service form.FormServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/services/:id/forms", h.ListForms)
	r.POST("/forms/:id/submissions", h.Submit)
}

func (h *Handler) ListForms(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	forms, err := h.service.ListForService(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, forms)
}

func (h *Handler) Submit(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.SubmitFormRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), id, sess.UserID, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, submission)
}
