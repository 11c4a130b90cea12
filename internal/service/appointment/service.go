package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type AppointmentServicer interface {
	Create(ctx context.Context, input model.CreateAppointmentInput) (*model.Appointment, error)
	Get(ctx context.Context, sess *session.Session, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, sess *session.Session, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
	Transition(ctx context.Context, sess *session.Session, id uuid.UUID, to model.AppointmentStatus, reason *string) (*model.Appointment, error)
	AddNote(ctx context.Context, sess *session.Session, id uuid.UUID, req model.CreateNoteRequest) (*model.AppointmentNote, error)
	ListNotes(ctx context.Context, sess *session.Session, id uuid.UUID) ([]*model.AppointmentNote, error)
	ListLogs(ctx context.Context, sess *session.Session, id uuid.UUID) ([]*model.AppointmentLog, error)
	Slip(ctx context.Context, sess *session.Session, id uuid.UUID) ([]byte, error)
	CreateAppointment(ctx context.Context, input model.CreateAppointmentInput) (*model.Appointment, error)
	Booker(ctx context.Context, sess *session.Session, doctorID, branchID uuid.UUID, patientID *uuid.UUID, bt model.BookingType) (uuid.UUID, model.BookingType, error)
}

type Service struct {
	repo      repository.AppointmentRepository
	doctors   repository.DoctorRepository
	hospitals repository.HospitalRepository
	source    availability.Source
	logger    *logger.Logger
	metrics   *metrics.Metrics
	location  *time.Location
	now       func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	hospitals repository.HospitalRepository,
	source availability.Source,
	loc *time.Location,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		doctors:   doctors,
		hospitals: hospitals,
		source:    source,
		logger:    log,
		metrics:   m,
		location:  loc,
		now:       time.Now,
	}
}

// CreateAppointment lets the booking wizard submit through the service.
func (s *Service) CreateAppointment(ctx context.Context, input model.CreateAppointmentInput) (*model.Appointment, error) {
	return s.Create(ctx, input)
}

// Create books one slot. The end time is derived from the service length
// and the database rejects a second live appointment on the same start.
func (s *Service) Create(ctx context.Context, in model.CreateAppointmentInput) (*model.Appointment, error) {
	if in.BookingType == "" {
		in.BookingType = model.BookingTypeOnline
	}
	if !in.BookingType.Valid() {
		return nil, apperrors.Validation("unknown booking type")
	}
	start, err := availability.ParseClock(in.StartTime)
	if err != nil {
		return nil, apperrors.Validation("start_time must be HH:MM")
	}
	now := s.now().In(s.location)
	if in.Date.IsZero() || !availability.IsSelectableDate(in.Date, now) {
		return nil, apperrors.Validation("appointment date is in the past")
	}

	svc, err := s.doctors.GetService(ctx, in.DoctorID, in.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor service", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("get doctor service: %w", err))
	}
	if err := s.ensureBranch(ctx, in.DoctorID, in.BranchID); err != nil {
		return nil, err
	}

	duration := svc.EffectiveDuration()
	if start.Add(duration) > availability.MinutesPerDay {
		return nil, apperrors.Validation("appointment must end by midnight")
	}
	if in.BookingType != model.BookingTypeWalkIn {
		if err := s.ensureSlot(ctx, in, start, duration); err != nil {
			return nil, err
		}
	}

	price := svc.EffectivePrice()
	currency := svc.Currency
	ts := now.UTC()
	appt := &model.Appointment{
		Base:            model.Base{ID: uuid.New(), CreatedAt: ts, UpdatedAt: ts},
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		ServiceID:       in.ServiceID,
		BranchID:        in.BranchID,
		ScheduledDate:   in.Date,
		StartTime:       start.String(),
		EndTime:         start.Add(duration).String(),
		DurationMinutes: duration,
		Status:          model.AppointmentStatusPending,
		BookingType:     in.BookingType,
		Reason:          in.Reason,
		Price:           &price,
		Currency:        &currency,
		Notes:           in.Notes,
	}

	log, err := newLog(appt.ID, model.AppointmentActionCreated, in.ActorID, struct{}{}, appt, ts)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	event, err := model.NewOutboxEvent(model.EventAppointmentCreated, appt.ID, appt)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("build outbox event: %w", err))
	}

	if err := s.repo.Create(ctx, appt, log, event); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			s.metrics.SlotConflicts.Inc()
			return nil, apperrors.Conflict("slot is no longer available", err)
		case errors.Is(err, repository.ErrReference):
			return nil, apperrors.BadRequest("appointment references an unknown record", err)
		}
		s.logger.Error(err, "failed to create appointment", "doctor_id", in.DoctorID.String())
		return nil, apperrors.Internal(fmt.Errorf("create appointment: %w", err))
	}

	s.metrics.AppointmentsCreated.WithLabelValues(string(appt.BookingType)).Inc()
	s.logger.Info("appointment created",
		"appointment_id", appt.ID.String(),
		"doctor_id", appt.DoctorID.String(),
		"date", appt.ScheduledDate.String(),
		"start", appt.StartTime)
	return appt, nil
}

func (s *Service) ensureBranch(ctx context.Context, doctorID, branchID uuid.UUID) error {
	branches, err := s.doctors.ListBranches(ctx, doctorID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("list doctor branches: %w", err))
	}
	for _, b := range branches {
		if b.ID == branchID {
			return nil
		}
	}
	return apperrors.Validation("doctor does not work at this branch")
}

func (s *Service) ensureSlot(ctx context.Context, in model.CreateAppointmentInput, start availability.Clock, duration int) error {
	slots, err := s.source.Slots(ctx, availability.Query{
		DoctorID: in.DoctorID,
		BranchID: in.BranchID,
		Date:     in.Date,
		Duration: duration,
	})
	if err != nil {
		return apperrors.Internal(fmt.Errorf("load availability: %w", err))
	}
	for _, slot := range slots {
		if slot.Start != start {
			continue
		}
		if !slot.Available {
			s.metrics.SlotConflicts.Inc()
			return apperrors.Conflict("slot is no longer available", nil)
		}
		return nil
	}
	return apperrors.Validation("start_time is not an offered slot")
}

func (s *Service) Get(ctx context.Context, sess *session.Session, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sess, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("get appointment: %w", err))
	}
	return appt, nil
}

// List narrows the filters to what the caller may see before querying.
func (s *Service) List(ctx context.Context, sess *session.Session, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	if err := s.scope(ctx, sess, filters); err != nil {
		return nil, 0, err
	}
	appts, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("list appointments: %w", err))
	}
	return appts, total, nil
}

// Transition moves an appointment along the status table. The write only
// lands if nobody changed the status since it was read.
func (s *Service) Transition(ctx context.Context, sess *session.Session, id uuid.UUID, to model.AppointmentStatus, reason *string) (*model.Appointment, error) {
	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sess, appt); err != nil {
		return nil, err
	}
	if !sess.IsClinic() && to != model.AppointmentStatusCancelled {
		return nil, apperrors.Forbidden("patients can only cancel appointments")
	}

	from := appt.Status
	if !from.CanTransition(to) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot move appointment from %s to %s", from, to), nil)
	}

	now := s.now().UTC()
	appt.Status = to
	appt.UpdatedAt = now
	appt.Stamp(to, now)
	if to == model.AppointmentStatusCancelled {
		appt.CancelReason = reason
	}

	actor := sess.UserID
	log, err := newLog(appt.ID, model.AppointmentActionStatusChanged, &actor,
		map[string]model.AppointmentStatus{"status": from},
		map[string]model.AppointmentStatus{"status": to}, now)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	event, err := model.NewOutboxEvent(model.EventAppointmentStatusChanged, appt.ID, map[string]interface{}{
		"appointment_id": appt.ID,
		"from":           from,
		"to":             to,
		"actor_id":       actor,
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("build outbox event: %w", err))
	}

	if err := s.repo.UpdateStatus(ctx, appt, from, log, event); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			return nil, apperrors.Conflict("appointment was changed by someone else", err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("update appointment status: %w", err))
	}

	s.metrics.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.logger.Info("appointment status changed",
		"appointment_id", appt.ID.String(),
		"from", string(from),
		"to", string(to),
		"actor_id", actor.String())
	return appt, nil
}

func (s *Service) AddNote(ctx context.Context, sess *session.Session, id uuid.UUID, req model.CreateNoteRequest) (*model.AppointmentNote, error) {
	if !sess.IsClinic() {
		return nil, apperrors.Forbidden("only clinic staff can add notes")
	}
	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sess, appt); err != nil {
		return nil, err
	}

	note := &model.AppointmentNote{
		ID:            uuid.New(),
		AppointmentID: appt.ID,
		AuthorID:      sess.UserID,
		Content:       req.Content,
		IsPrivate:     req.IsPrivate,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.AddNote(ctx, note); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("add note: %w", err))
	}
	return note, nil
}

// ListNotes hides private notes from patients.
func (s *Service) ListNotes(ctx context.Context, sess *session.Session, id uuid.UUID) ([]*model.AppointmentNote, error) {
	if _, err := s.Get(ctx, sess, id); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, id, sess.IsClinic())
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list notes: %w", err))
	}
	return notes, nil
}

func (s *Service) ListLogs(ctx context.Context, sess *session.Session, id uuid.UUID) ([]*model.AppointmentLog, error) {
	if _, err := s.Get(ctx, sess, id); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListLogs(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list appointment logs: %w", err))
	}
	return logs, nil
}

func newLog(appointmentID uuid.UUID, action string, actor *uuid.UUID, prev, next interface{}, at time.Time) (*model.AppointmentLog, error) {
	prevJSON, err := json.Marshal(prev)
	if err != nil {
		return nil, fmt.Errorf("marshal previous state: %w", err)
	}
	nextJSON, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("marshal new state: %w", err)
	}
	return &model.AppointmentLog{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		Action:        action,
		ActorID:       actor,
		PreviousState: prevJSON,
		NewState:      nextJSON,
		CreatedAt:     at,
	}, nil
}
