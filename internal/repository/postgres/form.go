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

type formRepository struct {
	BaseRepository
}

func NewFormRepository(db *sqlx.DB) repository.FormRepository {
	return &formRepository{NewBaseRepository(db)}
}

func (r *formRepository) ListForService(ctx context.Context, serviceID uuid.UUID) ([]*model.Form, error) {
	forms := []*model.Form{}
	err := r.db.SelectContext(ctx, &forms, `
		SELECT f.id, f.name, f.description, f.is_active, f.created_at, f.updated_at
		FROM forms f
		JOIN service_forms sf ON sf.form_id = f.id
		WHERE sf.service_id = $1 AND f.is_active
		ORDER BY f.name`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	if len(forms) == 0 {
		return forms, nil
	}

	ids := make([]uuid.UUID, len(forms))
	byID := make(map[uuid.UUID]*model.Form, len(forms))
	for i, f := range forms {
		ids[i] = f.ID
		byID[f.ID] = f
		f.Fields = []model.FormField{}
	}
	query, args, err := sqlx.In(`
		SELECT id, form_id, name, label, field_type, is_required, options, position
		FROM form_fields
		WHERE form_id IN (?)
		ORDER BY form_id, position`, ids)
	if err != nil {
		return nil, err
	}
	var fields []model.FormField
	if err := r.db.SelectContext(ctx, &fields, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list form fields: %w", err)
	}
	for _, field := range fields {
		f := byID[field.FormID]
		f.Fields = append(f.Fields, field)
	}
	return forms, nil
}

func (r *formRepository) Get(ctx context.Context, id uuid.UUID) (*model.Form, error) {
	var form model.Form
	err := r.db.GetContext(ctx, &form, `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM forms WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err)
	}
	form.Fields = []model.FormField{}
	err = r.db.SelectContext(ctx, &form.Fields, `
		SELECT id, form_id, name, label, field_type, is_required, options, position
		FROM form_fields
		WHERE form_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list form fields: %w", err)
	}
	return &form, nil
}

func (r *formRepository) CreateSubmission(ctx context.Context, submission *model.FormSubmission) error {
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	submission.CreatedAt = time.Now().UTC()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO form_submissions (id, form_id, appointment_id, user_id, answers, created_at)
		VALUES (:id, :form_id, :appointment_id, :user_id, :answers, :created_at)`, submission)
	if err != nil {
		return fmt.Errorf("failed to store form submission: %w", mapError(err))
	}
	return nil
}
