package user

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/service/user"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Handler struct {
	service user.UserServicer
}

func NewHandler(service user.UserServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Me)
}

// Me echoes the session and makes sure the caller has a users row, which
// the rest of the schema references.
func (h *Handler) Me(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	u, err := h.service.Sync(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"session": sess,
		"user":    u,
		"locale":  middleware.LocaleFrom(c),
	})
}
