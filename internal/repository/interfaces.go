package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken means a non-cancelled appointment already holds the
	// doctor's date and start time.
	ErrSlotTaken = errors.New("appointment slot already taken")
	// ErrStaleState means a compare-and-set update found the row in a
	// different state than expected.
	ErrStaleState = errors.New("record changed concurrently")
	// ErrReference is returned when a write points at a row that does not
	// exist.
	ErrReference = errors.New("referenced record does not exist")
)

// DashboardScope selects the appointments a dashboard summarises. Exactly
// one of BranchID and DoctorID is set.
type DashboardScope struct {
	BranchID *uuid.UUID
	DoctorID *uuid.UUID
	Date     model.Date
}

// All repository interfaces in one file
type (
	UserRepository interface {
		Upsert(ctx context.Context, user *model.User) error
	}

	HospitalRepository interface {
		List(ctx context.Context, filters *model.HospitalFilters) ([]*model.Hospital, int, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		ListBranches(ctx context.Context, hospitalID uuid.UUID) ([]*model.Branch, error)
		GetBranch(ctx context.Context, id uuid.UUID) (*model.Branch, error)
		ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.Department, error)
		ListBranchServices(ctx context.Context, branchID uuid.UUID) ([]*model.Service, error)
		IsStaff(ctx context.Context, userID, branchID uuid.UUID) (bool, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		Search(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error)
		ListServices(ctx context.Context, doctorID uuid.UUID) ([]model.DoctorService, error)
		GetService(ctx context.Context, doctorID, serviceID uuid.UUID) (*model.DoctorService, error)
		ListBranches(ctx context.Context, doctorID uuid.UUID) ([]model.DoctorBranch, error)
		ListReviews(ctx context.Context, doctorID uuid.UUID) ([]model.Review, error)
		ListInsurances(ctx context.Context, doctorID uuid.UUID) ([]model.Insurance, error)
		CreateReview(ctx context.Context, review *model.Review) error
	}

	ScheduleRepository interface {
		ListSchedules(ctx context.Context, doctorID uuid.UUID) ([]model.DoctorSchedule, error)
		ReplaceSchedules(ctx context.Context, doctorID uuid.UUID, schedules []model.DoctorSchedule) error
		GetOverride(ctx context.Context, doctorID, branchID uuid.UUID, date model.Date) (*model.ScheduleOverride, error)
		ListOverrides(ctx context.Context, doctorID uuid.UUID, from model.Date) ([]model.ScheduleOverride, error)
		CreateOverride(ctx context.Context, override *model.ScheduleOverride) error
		ListBookedSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.BookedSlot, error)
	}

	AppointmentRepository interface {
		// Create stores the appointment, its first log entry and the outbox
		// event in one transaction.
		Create(ctx context.Context, appt *model.Appointment, log *model.AppointmentLog, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
		// UpdateStatus applies appt's status and timestamps only if the stored
		// status still equals from.
		UpdateStatus(ctx context.Context, appt *model.Appointment, from model.AppointmentStatus, log *model.AppointmentLog, event *model.OutboxEvent) error
		AddNote(ctx context.Context, note *model.AppointmentNote) error
		ListNotes(ctx context.Context, appointmentID uuid.UUID, includePrivate bool) ([]*model.AppointmentNote, error)
		ListLogs(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentLog, error)
		CountByStatus(ctx context.Context, scope DashboardScope) (map[model.AppointmentStatus]int, error)
		ListUpcoming(ctx context.Context, scope DashboardScope, limit int) ([]*model.Appointment, error)
	}

	PatientRepository interface {
		GetProfile(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error)
		UpsertProfile(ctx context.Context, profile *model.PatientProfile) error
	}

	FormRepository interface {
		ListForService(ctx context.Context, serviceID uuid.UUID) ([]*model.Form, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Form, error)
		CreateSubmission(ctx context.Context, submission *model.FormSubmission) error
	}

	RegistrationRepository interface {
		CreateDoctorApplication(ctx context.Context, app *model.DoctorApplication) error
		CreateHospitalApplication(ctx context.Context, app *model.HospitalApplication) error
		ListDoctorApplications(ctx context.Context, status model.ApplicationStatus) ([]*model.DoctorApplication, error)
		ListHospitalApplications(ctx context.Context, status model.ApplicationStatus) ([]*model.HospitalApplication, error)
		// Decide* move a pending application to status; a decided
		// application returns ErrStaleState.
		DecideDoctorApplication(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, decidedBy uuid.UUID) error
		DecideHospitalApplication(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, decidedBy uuid.UUID) error
	}

	OutboxRepository interface {
		// ClaimPending marks up to limit pending events as processing and
		// returns them. Rows claimed by another worker are skipped.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		// MarkFailed records the error and bumps the retry count. The event
		// goes back to pending unless final is set.
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, final bool) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
