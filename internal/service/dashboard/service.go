package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
)

type Summary struct {
	Date     model.Date                      `json:"date"`
	BranchID *uuid.UUID                      `json:"branch_id,omitempty"`
	DoctorID *uuid.UUID                      `json:"doctor_id,omitempty"`
	Counts   map[model.AppointmentStatus]int `json:"counts"`
	Total    int                             `json:"total"`
	Upcoming []*model.Appointment            `json:"upcoming"`
}

type Request struct {
	BranchID *uuid.UUID
	DoctorID *uuid.UUID
	Date     model.Date
}

type DashboardServicer interface {
	Summary(ctx context.Context, sess *session.Session, req Request) (*Summary, error)
}

type Service struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	hospitals    repository.HospitalRepository
	timeout      time.Duration
	limit        int
	location     *time.Location
	now          func() time.Time
	logger       *logger.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	hospitals repository.HospitalRepository,
	timeout time.Duration,
	limit int,
	loc *time.Location,
	log *logger.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		hospitals:    hospitals,
		timeout:      timeout,
		limit:        limit,
		location:     loc,
		now:          time.Now,
		logger:       log,
	}
}

type result struct {
	summary *Summary
	err     error
}

// Summary reports the day's counts per status and the next appointments.
// If the queries outlive the configured timeout the caller gets a timeout
// error and nothing else.
func (s *Service) Summary(ctx context.Context, sess *session.Session, req Request) (*Summary, error) {
	scope, err := s.resolve(ctx, sess, req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		sum, err := s.load(ctx, scope)
		done <- result{sum, err}
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("dashboard timed out", "timeout", s.timeout.String())
		return nil, apperrors.Timeout("dashboard", ctx.Err())
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return nil, apperrors.Timeout("dashboard", r.err)
			}
			return nil, apperrors.Internal(r.err)
		}
		return r.summary, nil
	}
}

func (s *Service) load(ctx context.Context, scope repository.DashboardScope) (*Summary, error) {
	counts, err := s.appointments.CountByStatus(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}
	upcoming, err := s.appointments.ListUpcoming(ctx, scope, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return &Summary{
		Date:     scope.Date,
		BranchID: scope.BranchID,
		DoctorID: scope.DoctorID,
		Counts:   counts,
		Total:    total,
		Upcoming: upcoming,
	}, nil
}

// resolve picks the dashboard scope for the caller. Doctors default to
// their own appointments; everyone else has to name a branch they work at.
func (s *Service) resolve(ctx context.Context, sess *session.Session, req Request) (repository.DashboardScope, error) {
	scope := repository.DashboardScope{Date: req.Date}
	if scope.Date.IsZero() {
		scope.Date = model.NewDate(s.now().In(s.location))
	}

	if sess.HasRole(model.RoleDoctor) && req.BranchID == nil {
		d, err := s.doctors.GetByUserID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return scope, apperrors.Forbidden("no doctor profile linked to this account")
			}
			return scope, apperrors.Internal(fmt.Errorf("get doctor for user: %w", err))
		}
		if req.DoctorID != nil && *req.DoctorID != d.ID {
			return scope, apperrors.Forbidden("doctors can only see their own dashboard")
		}
		scope.DoctorID = &d.ID
		return scope, nil
	}

	if req.BranchID == nil {
		if req.DoctorID != nil && sess.HasRole(model.RoleAdmin) {
			scope.DoctorID = req.DoctorID
			return scope, nil
		}
		return scope, apperrors.Validation("branch_id is required")
	}
	if !sess.HasRole(model.RoleAdmin) {
		ok, err := s.hospitals.IsStaff(ctx, sess.UserID, *req.BranchID)
		if err != nil {
			return scope, apperrors.Internal(fmt.Errorf("check staff assignment: %w", err))
		}
		if !ok {
			return scope, apperrors.Forbidden("not assigned to this branch")
		}
	}
	scope.BranchID = req.BranchID
	return scope, nil
}
