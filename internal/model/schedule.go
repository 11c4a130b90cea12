package model

import (
	"github.com/google/uuid"
)

// DoctorSchedule is one recurring weekly working window. DayOfWeek follows
// time.Weekday (0 = Sunday).
type DoctorSchedule struct {
	Base
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	BranchID    uuid.UUID `db:"branch_id" json:"branch_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week" binding:"min=0,max=6"`
	StartTime   string    `db:"start_time" json:"start_time" binding:"required,clock"`
	EndTime     string    `db:"end_time" json:"end_time" binding:"required,clock"`
	SlotMinutes int       `db:"slot_minutes" json:"slot_minutes" binding:"omitempty,min=5,max=240"`
	IsActive    bool      `db:"is_active" json:"is_active"`
}

// ScheduleOverride replaces the weekly schedule for one date: either a
// closure (IsAvailable false) or a different working window.
type ScheduleOverride struct {
	Base
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	BranchID     uuid.UUID `db:"branch_id" json:"branch_id"`
	OverrideDate Date      `db:"override_date" json:"override_date"`
	IsAvailable  bool      `db:"is_available" json:"is_available"`
	StartTime    *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string   `db:"end_time" json:"end_time,omitempty"`
	Reason       *string   `db:"reason" json:"reason,omitempty"`
}

type ScheduleInput struct {
	BranchID    uuid.UUID `json:"branch_id" binding:"required"`
	DayOfWeek   int       `json:"day_of_week" binding:"min=0,max=6"`
	StartTime   string    `json:"start_time" binding:"required,clock"`
	EndTime     string    `json:"end_time" binding:"required,clock"`
	SlotMinutes int       `json:"slot_minutes" binding:"omitempty,min=5,max=240"`
}

type ReplaceSchedulesRequest struct {
	Schedules []ScheduleInput `json:"schedules" binding:"dive"`
}

type CreateOverrideRequest struct {
	BranchID    uuid.UUID `json:"branch_id" binding:"required"`
	Date        Date      `json:"date" binding:"required"`
	IsAvailable bool      `json:"is_available"`
	StartTime   *string   `json:"start_time" binding:"omitempty,clock"`
	EndTime     *string   `json:"end_time" binding:"omitempty,clock"`
	Reason      *string   `json:"reason" binding:"omitempty,max=500"`
}
