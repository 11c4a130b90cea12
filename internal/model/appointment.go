package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "pending"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn  AppointmentStatus = "checked_in"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending: {
		AppointmentStatusConfirmed,
		AppointmentStatusCheckedIn,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusCheckedIn,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusCheckedIn:  {AppointmentStatusInProgress, AppointmentStatusCompleted},
	AppointmentStatusInProgress: {AppointmentStatusCompleted},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCheckedIn,
		AppointmentStatusInProgress, AppointmentStatusCompleted, AppointmentStatusCancelled,
		AppointmentStatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s AppointmentStatus) Terminal() bool {
	return s.Valid() && len(appointmentTransitions[s]) == 0
}

// CanTransition reports whether moving from s to next is allowed. Status only
// moves forward; a completed appointment never returns to pending.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type BookingType string

const (
	BookingTypeOnline BookingType = "online"
	BookingTypePhone  BookingType = "phone"
	BookingTypeWalkIn BookingType = "walk_in"
)

func (b BookingType) Valid() bool {
	return b == BookingTypeOnline || b == BookingTypePhone || b == BookingTypeWalkIn
}

// Appointment is one booked slot. StartTime and EndTime are wall clock
// "HH:MM" values on ScheduledDate in the clinic's timezone.
type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	ServiceID       uuid.UUID         `db:"service_id" json:"service_id"`
	BranchID        uuid.UUID         `db:"branch_id" json:"branch_id"`
	ScheduledDate   Date              `db:"scheduled_date" json:"scheduled_date"`
	StartTime       string            `db:"start_time" json:"start_time"`
	EndTime         string            `db:"end_time" json:"end_time"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          AppointmentStatus `db:"status" json:"status"`
	BookingType     BookingType       `db:"booking_type" json:"booking_type"`
	Reason          *string           `db:"reason" json:"reason,omitempty"`
	Price           *float64          `db:"price" json:"price,omitempty"`
	Currency        *string           `db:"currency" json:"currency,omitempty"`
	Notes           *string           `db:"notes" json:"notes,omitempty"`
	CancelReason    *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
	ConfirmedAt     *time.Time        `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CheckedInAt     *time.Time        `db:"checked_in_at" json:"checked_in_at,omitempty"`
	CompletedAt     *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt     *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// Stamp sets the audit timestamp that belongs to status.
func (a *Appointment) Stamp(status AppointmentStatus, at time.Time) {
	switch status {
	case AppointmentStatusConfirmed:
		a.ConfirmedAt = &at
	case AppointmentStatusCheckedIn:
		a.CheckedInAt = &at
	case AppointmentStatusCompleted:
		a.CompletedAt = &at
	case AppointmentStatusCancelled:
		a.CancelledAt = &at
	}
}

// AppointmentLog is one append-only audit entry.
type AppointmentLog struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AppointmentID uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	Action        string          `db:"action" json:"action"`
	ActorID       *uuid.UUID      `db:"actor_id" json:"actor_id,omitempty"`
	PreviousState json.RawMessage `db:"previous_state" json:"previous_state"`
	NewState      json.RawMessage `db:"new_state" json:"new_state"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

const (
	AppointmentActionCreated       = "created"
	AppointmentActionStatusChanged = "status_changed"
)

type AppointmentNote struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	AuthorID      uuid.UUID `db:"author_id" json:"author_id"`
	Content       string    `db:"content" json:"content"`
	IsPrivate     bool      `db:"is_private" json:"is_private"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type AppointmentFilters struct {
	PatientID *uuid.UUID        `form:"-"`
	DoctorID  *uuid.UUID        `form:"-"`
	BranchID  *uuid.UUID        `form:"-"`
	Status    AppointmentStatus `form:"status"`
	From      *Date             `form:"-"`
	To        *Date             `form:"-"`
	Pagination
}

// BookedSlot is the part of a non-cancelled appointment availability needs.
type BookedSlot struct {
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
}

type CreateAppointmentRequest struct {
	DoctorID    uuid.UUID   `json:"doctor_id" binding:"required"`
	ServiceID   uuid.UUID   `json:"service_id" binding:"required"`
	BranchID    uuid.UUID   `json:"branch_id" binding:"required"`
	PatientID   *uuid.UUID  `json:"patient_id"`
	Date        Date        `json:"scheduled_date" binding:"required"`
	StartTime   string      `json:"start_time" binding:"required,clock"`
	BookingType BookingType `json:"booking_type" binding:"omitempty,oneof=online phone walk_in"`
	Reason      *string     `json:"reason" binding:"omitempty,max=500"`
	Notes       *string     `json:"notes" binding:"omitempty,max=1000"`
}

type UpdateStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=confirmed checked_in in_progress completed cancelled no_show"`
	Reason *string           `json:"reason" binding:"omitempty,max=500"`
}

type CreateNoteRequest struct {
	Content   string `json:"content" binding:"required,max=4000"`
	IsPrivate bool   `json:"is_private"`
}

// CreateAppointmentInput is what every booking surface hands to the
// appointment service.
type CreateAppointmentInput struct {
	PatientID   uuid.UUID
	DoctorID    uuid.UUID
	ServiceID   uuid.UUID
	BranchID    uuid.UUID
	Date        Date
	StartTime   string
	BookingType BookingType
	Reason      *string
	Notes       *string
	ActorID     *uuid.UUID
}
