package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	var profile model.PatientProfile
	err := r.db.GetContext(ctx, &profile, `
		SELECT id, user_id, date_of_birth, gender, blood_type, allergies,
		       chronic_conditions, emergency_contact, created_at, updated_at
		FROM patient_profiles
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return &profile, nil
}

// UpsertProfile keeps one profile per user; the stored id wins on update.
func (r *patientRepository) UpsertProfile(ctx context.Context, profile *model.PatientProfile) error {
	now := time.Now().UTC()
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if profile.Allergies == nil {
		profile.Allergies = []string{}
	}
	if profile.ChronicConditions == nil {
		profile.ChronicConditions = []string{}
	}
	profile.UpdatedAt = now

	query, args, err := sqlx.Named(`
		INSERT INTO patient_profiles (
			id, user_id, date_of_birth, gender, blood_type, allergies,
			chronic_conditions, emergency_contact, created_at, updated_at
		) VALUES (
			:id, :user_id, :date_of_birth, :gender, :blood_type, :allergies,
			:chronic_conditions, :emergency_contact, :updated_at, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			date_of_birth = EXCLUDED.date_of_birth,
			gender = EXCLUDED.gender,
			blood_type = EXCLUDED.blood_type,
			allergies = EXCLUDED.allergies,
			chronic_conditions = EXCLUDED.chronic_conditions,
			emergency_contact = EXCLUDED.emergency_contact,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`, profile)
	if err != nil {
		return err
	}
	row := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...)
	if err := row.Scan(&profile.ID, &profile.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert patient profile: %w", mapError(err))
	}
	return nil
}
