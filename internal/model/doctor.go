package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Doctor struct {
	Base
	UserID            *uuid.UUID     `db:"user_id" json:"user_id,omitempty"`
	FirstName         string         `db:"first_name" json:"first_name"`
	LastName          string         `db:"last_name" json:"last_name"`
	Title             *string        `db:"title" json:"title,omitempty"`
	PhotoURL          *string        `db:"photo_url" json:"photo_url,omitempty"`
	Specialties       pq.StringArray `db:"specialties" json:"specialties"`
	YearsOfExperience int            `db:"years_of_experience" json:"years_of_experience"`
	Bio               *string        `db:"bio" json:"bio,omitempty"`
	ConsultationFee   *float64       `db:"consultation_fee" json:"consultation_fee,omitempty"`
	Languages         pq.StringArray `db:"languages" json:"languages"`
	Status            string         `db:"status" json:"status"`
}

func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}

// DoctorBranch is a doctor_branch_assignments row joined with its branch.
type DoctorBranch struct {
	Branch
	HospitalName string `db:"hospital_name" json:"hospital_name"`
	IsPrimary    bool   `db:"is_primary" json:"is_primary"`
}

// DoctorService is a doctor_services row joined with its service. Custom
// values override the service defaults when set.
type DoctorService struct {
	Service
	CustomPrice    *float64 `db:"custom_price" json:"custom_price,omitempty"`
	CustomDuration *int     `db:"custom_duration" json:"custom_duration,omitempty"`
}

func (s *DoctorService) EffectiveDuration() int {
	if s.CustomDuration != nil && *s.CustomDuration > 0 {
		return *s.CustomDuration
	}
	return s.DurationMinutes
}

func (s *DoctorService) EffectivePrice() float64 {
	if s.CustomPrice != nil {
		return *s.CustomPrice
	}
	return s.BasePrice
}

type Review struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	Rating      int       `db:"rating" json:"rating"`
	Comment     *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Insurance struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// DoctorProfile is the doctor page: the doctor row, its relations and the
// aggregates derived from them.
type DoctorProfile struct {
	Doctor        *Doctor         `json:"doctor"`
	Services      []DoctorService `json:"services"`
	Branches      []DoctorBranch  `json:"branches"`
	Reviews       []Review        `json:"reviews"`
	Insurances    []Insurance     `json:"insurances"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
	PrimaryBranch *DoctorBranch   `json:"primary_branch,omitempty"`
}

type DoctorFilters struct {
	Specialty  string     `form:"specialty"`
	City       string     `form:"city"`
	Language   string     `form:"language"`
	Search     string     `form:"q"`
	HospitalID *uuid.UUID `form:"-"`
	Pagination
}

type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}
