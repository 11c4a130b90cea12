package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Hospital struct {
	Base
	Name        string  `db:"name" json:"name"`
	Type        string  `db:"type" json:"type"`
	Description *string `db:"description" json:"description,omitempty"`
	LogoURL     *string `db:"logo_url" json:"logo_url,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
	Website     *string `db:"website" json:"website,omitempty"`
	Status      string  `db:"status" json:"status"`
}

type Branch struct {
	Base
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Name       string    `db:"name" json:"name"`
	Address    string    `db:"address" json:"address"`
	City       string    `db:"city" json:"city"`
	Latitude   *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude  *float64  `db:"longitude" json:"longitude,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	// Opaque JSON owned by the clinic UI.
	OperatingHours json.RawMessage `db:"operating_hours" json:"operating_hours"`
	Facilities     json.RawMessage `db:"facilities" json:"facilities"`
	IsActive       bool            `db:"is_active" json:"is_active"`
}

type Department struct {
	Base
	HospitalID  uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
}

type Service struct {
	Base
	DepartmentID    uuid.UUID `db:"department_id" json:"department_id"`
	Name            string    `db:"name" json:"name"`
	Description     *string   `db:"description" json:"description,omitempty"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	BasePrice       float64   `db:"base_price" json:"base_price"`
	Currency        string    `db:"currency" json:"currency"`
	IsActive        bool      `db:"is_active" json:"is_active"`
}

type StaffAssignment struct {
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	BranchID  uuid.UUID  `db:"branch_id" json:"branch_id"`
	Role      Role       `db:"role" json:"role"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
}

type HospitalFilters struct {
	City   string `form:"city"`
	Search string `form:"q"`
	Pagination
}
