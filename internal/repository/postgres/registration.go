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

type registrationRepository struct {
	BaseRepository
}

func NewRegistrationRepository(db *sqlx.DB) repository.RegistrationRepository {
	return &registrationRepository{NewBaseRepository(db)}
}

const (
	doctorApplicationColumns = `id, first_name, last_name, email, phone, specialty,
		license_number, years_of_experience, consultation_fee, bio, languages,
		diploma_url, license_url, status, decided_by, decided_at, created_at, updated_at`
	hospitalApplicationColumns = `id, name, type, city, address, email, phone, website,
		admin_name, admin_email, admin_password_hash, status, decided_by, decided_at,
		created_at, updated_at`
)

func stampApplication(b *model.Base, status *model.ApplicationStatus) {
	now := time.Now().UTC()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt, b.UpdatedAt = now, now
	*status = model.ApplicationStatusPending
}

func (r *registrationRepository) CreateDoctorApplication(ctx context.Context, app *model.DoctorApplication) error {
	stampApplication(&app.Base, &app.Status)
	if app.Languages == nil {
		app.Languages = []string{}
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO doctor_applications (`+doctorApplicationColumns+`)
		VALUES (
			:id, :first_name, :last_name, :email, :phone, :specialty,
			:license_number, :years_of_experience, :consultation_fee, :bio, :languages,
			:diploma_url, :license_url, :status, :decided_by, :decided_at, :created_at, :updated_at
		)`, app)
	if err != nil {
		return fmt.Errorf("failed to create doctor application: %w", err)
	}
	return nil
}

func (r *registrationRepository) CreateHospitalApplication(ctx context.Context, app *model.HospitalApplication) error {
	stampApplication(&app.Base, &app.Status)
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO hospital_applications (`+hospitalApplicationColumns+`)
		VALUES (
			:id, :name, :type, :city, :address, :email, :phone, :website,
			:admin_name, :admin_email, :admin_password_hash, :status, :decided_by, :decided_at,
			:created_at, :updated_at
		)`, app)
	if err != nil {
		return fmt.Errorf("failed to create hospital application: %w", err)
	}
	return nil
}

func (r *registrationRepository) ListDoctorApplications(ctx context.Context, status model.ApplicationStatus) ([]*model.DoctorApplication, error) {
	apps := []*model.DoctorApplication{}
	err := r.db.SelectContext(ctx, &apps, `
		SELECT `+doctorApplicationColumns+`
		FROM doctor_applications
		WHERE $1 = '' OR status = $1
		ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor applications: %w", err)
	}
	return apps, nil
}

func (r *registrationRepository) ListHospitalApplications(ctx context.Context, status model.ApplicationStatus) ([]*model.HospitalApplication, error) {
	apps := []*model.HospitalApplication{}
	err := r.db.SelectContext(ctx, &apps, `
		SELECT `+hospitalApplicationColumns+`
		FROM hospital_applications
		WHERE $1 = '' OR status = $1
		ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list hospital applications: %w", err)
	}
	return apps, nil
}

func (r *registrationRepository) DecideDoctorApplication(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, decidedBy uuid.UUID) error {
	return r.decide(ctx, "doctor_applications", id, status, decidedBy)
}

func (r *registrationRepository) DecideHospitalApplication(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, decidedBy uuid.UUID) error {
	return r.decide(ctx, "hospital_applications", id, status, decidedBy)
}

func (r *registrationRepository) decide(ctx context.Context, table string, id uuid.UUID, status model.ApplicationStatus, decidedBy uuid.UUID) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE `+table+`
		SET status = $1, decided_by = $2, decided_at = $3, updated_at = $3
		WHERE id = $4 AND status = 'pending'`, status, decidedBy, now, id)
	if err != nil {
		return fmt.Errorf("failed to decide application: %w", err)
	}
	if err := expectOne(res); err == nil {
		return nil
	} else if err != repository.ErrNotFound {
		return err
	}

	// Nothing updated: either the row is missing or it was already decided.
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id); err != nil {
		return err
	}
	if exists {
		return repository.ErrStaleState
	}
	return repository.ErrNotFound
}
