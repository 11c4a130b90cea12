// Package handler holds helpers shared by the HTTP handlers.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

// ParamID parses a uuid path parameter. On failure the response is written
// and ok is false.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

// QueryID parses an optional uuid query parameter.
func QueryID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+key, err))
		return nil, false
	}
	return &id, true
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(c *gin.Context, key string) (*model.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+key, err))
		return nil, false
	}
	return &d, true
}

// Session returns the authenticated caller.
func Session(c *gin.Context) (*session.Session, bool) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return nil, false
	}
	return sess, true
}

// BindJSON decodes and validates the request body into obj.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		httputil.RespondWithError(c, middleware.BindingError(err))
		return false
	}
	return true
}

// BindQuery binds query parameters into obj.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		httputil.RespondWithError(c, middleware.BindingError(err))
		return false
	}
	return true
}
