package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/locale"
	"github.com/jwalitptl/booking-api/pkg/logger"
)

type fakeRepo struct {
	users map[uuid.UUID]*model.User
	err   error
}

func (f *fakeRepo) Upsert(_ context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.users[u.ID]; ok {
		u.FullName = existing.FullName
		u.Locale = existing.Locale
	}
	f.users[u.ID] = u
	return nil
}

func TestSyncKeepsExistingProfile(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{users: map[uuid.UUID]*model.User{id: {FullName: "Leyla Aliyeva", Locale: "ru"}}}
	svc := NewService(repo, logger.Nop())

	u, err := svc.Sync(context.Background(), &session.Session{UserID: id, Email: "leyla@example.az", Locale: locale.AZ})
	require.NoError(t, err)
	assert.Equal(t, "Leyla Aliyeva", u.FullName)
	assert.Equal(t, "leyla@example.az", u.Email)
}

func TestSyncFailureIsInternal(t *testing.T) {
	svc := NewService(&fakeRepo{err: errors.New("db down")}, logger.Nop())
	_, err := svc.Sync(context.Background(), &session.Session{UserID: uuid.New()})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal))
}
