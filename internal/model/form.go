package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Form is an intake questionnaire attached to services via service_forms.
type Form struct {
	Base
	Name        string      `db:"name" json:"name"`
	Description *string     `db:"description" json:"description,omitempty"`
	IsActive    bool        `db:"is_active" json:"is_active"`
	Fields      []FormField `db:"-" json:"fields"`
}

type FormField struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	FormID     uuid.UUID      `db:"form_id" json:"form_id"`
	Name       string         `db:"name" json:"name"`
	Label      string         `db:"label" json:"label"`
	FieldType  string         `db:"field_type" json:"field_type"`
	IsRequired bool           `db:"is_required" json:"is_required"`
	Options    pq.StringArray `db:"options" json:"options"`
	Position   int            `db:"position" json:"position"`
}

type ServiceForm struct {
	ServiceID  uuid.UUID `db:"service_id" json:"service_id"`
	FormID     uuid.UUID `db:"form_id" json:"form_id"`
	IsRequired bool      `db:"is_required" json:"is_required"`
}

type FormSubmission struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	FormID        uuid.UUID       `db:"form_id" json:"form_id"`
	AppointmentID *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	Answers       json.RawMessage `db:"answers" json:"answers"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type SubmitFormRequest struct {
	AppointmentID *uuid.UUID        `json:"appointment_id"`
	Answers       map[string]string `json:"answers" binding:"required"`
}
