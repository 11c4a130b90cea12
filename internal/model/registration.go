package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

type ApplicationKind string

const (
	ApplicationKindDoctor   ApplicationKind = "doctors"
	ApplicationKindHospital ApplicationKind = "hospitals"
)

type DoctorApplication struct {
	Base
	FirstName         string            `db:"first_name" json:"first_name"`
	LastName          string            `db:"last_name" json:"last_name"`
	Email             string            `db:"email" json:"email"`
	Phone             string            `db:"phone" json:"phone"`
	Specialty         string            `db:"specialty" json:"specialty"`
	LicenseNumber     string            `db:"license_number" json:"license_number"`
	YearsOfExperience int               `db:"years_of_experience" json:"years_of_experience"`
	ConsultationFee   float64           `db:"consultation_fee" json:"consultation_fee"`
	Bio               *string           `db:"bio" json:"bio,omitempty"`
	Languages         pq.StringArray    `db:"languages" json:"languages"`
	DiplomaURL        string            `db:"diploma_url" json:"diploma_url"`
	LicenseURL        string            `db:"license_url" json:"license_url"`
	Status            ApplicationStatus `db:"status" json:"status"`
	DecidedBy         *uuid.UUID        `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt         *time.Time        `db:"decided_at" json:"decided_at,omitempty"`
}

type HospitalApplication struct {
	Base
	Name              string            `db:"name" json:"name"`
	Type              string            `db:"type" json:"type"`
	City              string            `db:"city" json:"city"`
	Address           string            `db:"address" json:"address"`
	Email             string            `db:"email" json:"email"`
	Phone             string            `db:"phone" json:"phone"`
	Website           *string           `db:"website" json:"website,omitempty"`
	AdminName         string            `db:"admin_name" json:"admin_name"`
	AdminEmail        string            `db:"admin_email" json:"admin_email"`
	AdminPasswordHash string            `db:"admin_password_hash" json:"-"`
	Status            ApplicationStatus `db:"status" json:"status"`
	DecidedBy         *uuid.UUID        `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt         *time.Time        `db:"decided_at" json:"decided_at,omitempty"`
}

type DecisionRequest struct {
	Approve bool `json:"approve"`
}
