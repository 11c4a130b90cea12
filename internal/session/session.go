// Package session carries the authenticated caller through a request. The
// auth provider issues the tokens; this package only verifies them.
package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/locale"
)

type Session struct {
	UserID uuid.UUID     `json:"user_id"`
	Email  string        `json:"email"`
	Role   model.Role    `json:"role"`
	Locale locale.Locale `json:"locale"`
}

func (s *Session) HasRole(roles ...model.Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

func (s *Session) IsClinic() bool {
	return s.Role.IsClinicRole()
}

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
