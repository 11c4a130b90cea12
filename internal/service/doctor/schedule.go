package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type ScheduleServicer interface {
	List(ctx context.Context, doctorID uuid.UUID, from model.Date) (*Schedules, error)
	Replace(ctx context.Context, sess *session.Session, doctorID uuid.UUID, req model.ReplaceSchedulesRequest) ([]model.DoctorSchedule, error)
	CreateOverride(ctx context.Context, sess *session.Session, doctorID uuid.UUID, req model.CreateOverrideRequest) (*model.ScheduleOverride, error)
}

// ScheduleService manages the weekly schedule and date overrides that
// availability is computed from.
type ScheduleService struct {
	repo      repository.ScheduleRepository
	doctors   repository.DoctorRepository
	hospitals repository.HospitalRepository
}

func NewScheduleService(repo repository.ScheduleRepository, doctors repository.DoctorRepository, hospitals repository.HospitalRepository) *ScheduleService {
	return &ScheduleService{repo: repo, doctors: doctors, hospitals: hospitals}
}

type Schedules struct {
	Weekly    []model.DoctorSchedule   `json:"weekly"`
	Overrides []model.ScheduleOverride `json:"overrides"`
}

func (s *ScheduleService) List(ctx context.Context, doctorID uuid.UUID, from model.Date) (*Schedules, error) {
	weekly, err := s.repo.ListSchedules(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list schedules: %w", err))
	}
	overrides, err := s.repo.ListOverrides(ctx, doctorID, from)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list overrides: %w", err))
	}
	return &Schedules{Weekly: weekly, Overrides: overrides}, nil
}

func (s *ScheduleService) Replace(ctx context.Context, sess *session.Session, doctorID uuid.UUID, req model.ReplaceSchedulesRequest) ([]model.DoctorSchedule, error) {
	branches := make([]uuid.UUID, 0, len(req.Schedules))
	rows := make([]model.DoctorSchedule, 0, len(req.Schedules))
	for _, in := range req.Schedules {
		if err := checkWindow(in.StartTime, in.EndTime); err != nil {
			return nil, err
		}
		slot := in.SlotMinutes
		if slot == 0 {
			slot = 30
		}
		branches = append(branches, in.BranchID)
		rows = append(rows, model.DoctorSchedule{
			DoctorID:    doctorID,
			BranchID:    in.BranchID,
			DayOfWeek:   in.DayOfWeek,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			SlotMinutes: slot,
			IsActive:    true,
		})
	}
	if err := s.authorize(ctx, sess, doctorID, branches); err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceSchedules(ctx, doctorID, rows); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("replace schedules: %w", err))
	}
	return rows, nil
}

func (s *ScheduleService) CreateOverride(ctx context.Context, sess *session.Session, doctorID uuid.UUID, req model.CreateOverrideRequest) (*model.ScheduleOverride, error) {
	if req.IsAvailable && (req.StartTime == nil) != (req.EndTime == nil) {
		return nil, apperrors.Validation("start_time and end_time must be given together")
	}
	if req.IsAvailable && req.StartTime != nil {
		if err := checkWindow(*req.StartTime, *req.EndTime); err != nil {
			return nil, err
		}
	}
	if err := s.authorize(ctx, sess, doctorID, []uuid.UUID{req.BranchID}); err != nil {
		return nil, err
	}

	o := &model.ScheduleOverride{
		DoctorID:     doctorID,
		BranchID:     req.BranchID,
		OverrideDate: req.Date,
		IsAvailable:  req.IsAvailable,
		Reason:       req.Reason,
	}
	if req.IsAvailable {
		o.StartTime, o.EndTime = req.StartTime, req.EndTime
	}
	if err := s.repo.CreateOverride(ctx, o); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create override: %w", err))
	}
	return o, nil
}

func checkWindow(start, end string) error {
	from, err := availability.ParseClock(start)
	if err != nil {
		return apperrors.Validation("start_time must be HH:MM")
	}
	to, err := availability.ParseClock(end)
	if err != nil {
		return apperrors.Validation("end_time must be HH:MM")
	}
	if to <= from {
		return apperrors.Validation("end_time must be after start_time")
	}
	return nil
}

// authorize lets admins edit any schedule, doctors their own and branch
// staff the rows of their branches.
func (s *ScheduleService) authorize(ctx context.Context, sess *session.Session, doctorID uuid.UUID, branches []uuid.UUID) error {
	if sess.HasRole(model.RoleAdmin) {
		return nil
	}
	if sess.HasRole(model.RoleDoctor) {
		d, err := s.doctors.GetByUserID(ctx, sess.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Internal(fmt.Errorf("get doctor for user: %w", err))
		}
		if err == nil && d.ID == doctorID {
			return nil
		}
		return apperrors.Forbidden("doctors can only edit their own schedule")
	}
	if len(branches) == 0 {
		return apperrors.Forbidden("no branch to check access against")
	}
	for _, b := range branches {
		ok, err := s.hospitals.IsStaff(ctx, sess.UserID, b)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("check staff assignment: %w", err))
		}
		if !ok {
			return apperrors.Forbidden("not assigned to this branch")
		}
	}
	return nil
}
