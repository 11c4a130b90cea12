package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BloodType string

var BloodTypes = []BloodType{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func (b BloodType) Valid() bool {
	for _, t := range BloodTypes {
		if b == t {
			return true
		}
	}
	return false
}

type PatientProfile struct {
	Base
	UserID            uuid.UUID      `db:"user_id" json:"user_id"`
	DateOfBirth       *Date          `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender            *string        `db:"gender" json:"gender,omitempty"`
	BloodType         *BloodType     `db:"blood_type" json:"blood_type,omitempty"`
	Allergies         pq.StringArray `db:"allergies" json:"allergies"`
	ChronicConditions pq.StringArray `db:"chronic_conditions" json:"chronic_conditions"`
	EmergencyContact  *string        `db:"emergency_contact" json:"emergency_contact,omitempty"`
}

type UpsertPatientProfileRequest struct {
	DateOfBirth       *Date    `json:"date_of_birth"`
	Gender            *string  `json:"gender" binding:"omitempty,oneof=male female other"`
	BloodType         *string  `json:"blood_type" binding:"omitempty,blood_type"`
	Allergies         []string `json:"allergies" binding:"omitempty,dive,max=200"`
	ChronicConditions []string `json:"chronic_conditions" binding:"omitempty,dive,max=200"`
	EmergencyContact  *string  `json:"emergency_contact" binding:"omitempty,max=200"`
}
