package user

import (
	"context"
	"fmt"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
)

type UserServicer interface {
	Sync(ctx context.Context, sess *session.Session) (*model.User, error)
}

type Service struct {
	repo   repository.UserRepository
	logger *logger.Logger
}

func NewService(repo repository.UserRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Sync makes sure the caller has a users row. Appointments, reviews and
// profiles reference it, so clients call /me once after signing in.
func (s *Service) Sync(ctx context.Context, sess *session.Session) (*model.User, error) {
	u := &model.User{
		Base:   model.Base{ID: sess.UserID},
		Email:  sess.Email,
		Locale: string(sess.Locale),
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		s.logger.Error(err, "failed to sync user", "user_id", sess.UserID.String())
		return nil, apperrors.Internal(fmt.Errorf("sync user: %w", err))
	}
	return u, nil
}
