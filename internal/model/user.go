package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the application role attached to a user by the auth provider.
type Role string

const (
	RolePatient       Role = "patient"
	RoleDoctor        Role = "doctor"
	RoleHospitalAdmin Role = "hospital_admin"
	RoleStaff         Role = "staff"
	RolePsychology    Role = "psychology"
	RoleSpa           Role = "spa"
	RoleDentistry     Role = "dentistry"
	RoleLaboratory    Role = "laboratory"
	RoleAdmin         Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleHospitalAdmin, RoleStaff,
		RolePsychology, RoleSpa, RoleDentistry, RoleLaboratory, RoleAdmin:
		return true
	}
	return false
}

// IsClinicRole reports whether the role belongs to the hospital-facing app.
func (r Role) IsClinicRole() bool {
	switch r {
	case RoleDoctor, RoleHospitalAdmin, RoleStaff,
		RolePsychology, RoleSpa, RoleDentistry, RoleLaboratory, RoleAdmin:
		return true
	}
	return false
}

// User mirrors the auth provider's user with the profile columns we own.
type User struct {
	Base
	Email    string  `json:"email" db:"email"`
	FullName string  `json:"full_name" db:"full_name"`
	Phone    *string `json:"phone,omitempty" db:"phone"`
	Locale   string  `json:"locale" db:"locale"`
}

type UserRole struct {
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Role       Role       `json:"role" db:"role"`
	HospitalID *uuid.UUID `json:"hospital_id,omitempty" db:"hospital_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
