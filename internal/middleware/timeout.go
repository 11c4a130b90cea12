package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

// Timeout puts a deadline on the request context. Handlers see it through
// the context they pass down; a handler that ran out of time without
// writing gets a timeout response.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			httputil.RespondWithError(c, apperrors.Timeout("request", ctx.Err()))
		}
	}
}
