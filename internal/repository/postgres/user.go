package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{NewBaseRepository(db)}
}

// Upsert mirrors the identity provider's user into the users table so that
// rows referencing it can be written. Profile columns are only filled when
// the row is new.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	if user.Locale == "" {
		user.Locale = "az"
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (id, email, full_name, locale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
		RETURNING full_name, phone, locale, created_at, updated_at`,
		user.ID, user.Email, user.FullName, user.Locale, now)
	if err := row.Scan(&user.FullName, &user.Phone, &user.Locale, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert user: %w", mapError(err))
	}
	return nil
}
