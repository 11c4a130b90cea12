package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

// TokenVerifier turns a bearer token into a session.
type TokenVerifier interface {
	Verify(token string) (*session.Session, error)
}

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadScheme     = errors.New("invalid authorization format")
)

// Authenticate verifies the bearer token and puts the session on the
// request context.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errMissingHeader))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errBadScheme))
			return
		}

		sess, err := verifier.Verify(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}

		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

// RequireRole lets through only sessions holding one of roles.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := session.FromContext(c.Request.Context())
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			return
		}
		if !sess.HasRole(roles...) {
			httputil.RespondWithError(c, apperrors.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// RequireClinic lets through clinic app roles, admin included.
func RequireClinic() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := session.FromContext(c.Request.Context())
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			return
		}
		if !sess.IsClinic() {
			httputil.RespondWithError(c, apperrors.Forbidden("clinic staff only"))
			return
		}
		c.Next()
	}
}
