package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type scheduleRepository struct {
	BaseRepository
}

func NewScheduleRepository(db *sqlx.DB) repository.ScheduleRepository {
	return &scheduleRepository{NewBaseRepository(db)}
}

func (r *scheduleRepository) ListSchedules(ctx context.Context, doctorID uuid.UUID) ([]model.DoctorSchedule, error) {
	schedules := []model.DoctorSchedule{}
	err := r.db.SelectContext(ctx, &schedules, `
		SELECT id, doctor_id, branch_id, day_of_week,
		       to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time,
		       slot_minutes, is_active, created_at, updated_at
		FROM doctor_schedules
		WHERE doctor_id = $1
		ORDER BY day_of_week, start_time`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// ReplaceSchedules swaps the doctor's weekly schedule for the given rows.
func (r *scheduleRepository) ReplaceSchedules(ctx context.Context, doctorID uuid.UUID, schedules []model.DoctorSchedule) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM doctor_schedules WHERE doctor_id = $1`, doctorID); err != nil {
			return fmt.Errorf("failed to clear schedules: %w", err)
		}
		now := time.Now().UTC()
		for i := range schedules {
			s := &schedules[i]
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			s.DoctorID = doctorID
			s.CreatedAt, s.UpdatedAt = now, now
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO doctor_schedules (
					id, doctor_id, branch_id, day_of_week, start_time, end_time,
					slot_minutes, is_active, created_at, updated_at
				) VALUES (
					:id, :doctor_id, :branch_id, :day_of_week, :start_time, :end_time,
					:slot_minutes, :is_active, :created_at, :updated_at
				)`, s)
			if err != nil {
				return fmt.Errorf("failed to insert schedule: %w", mapError(err))
			}
		}
		return nil
	})
}

const overrideColumns = `id, doctor_id, branch_id, override_date, is_available,
	to_char(start_time, 'HH24:MI') AS start_time,
	to_char(end_time, 'HH24:MI') AS end_time,
	reason, created_at, updated_at`

// GetOverride returns the override for the date. With a nil branch any
// branch's override matches, closures first.
func (r *scheduleRepository) GetOverride(ctx context.Context, doctorID, branchID uuid.UUID, date model.Date) (*model.ScheduleOverride, error) {
	var o model.ScheduleOverride
	err := r.db.GetContext(ctx, &o, `
		SELECT `+overrideColumns+`
		FROM doctor_schedule_overrides
		WHERE doctor_id = $1
		  AND override_date = $2
		  AND ($3 = '00000000-0000-0000-0000-000000000000'::uuid OR branch_id = $3)
		ORDER BY is_available
		LIMIT 1`, doctorID, date, branchID)
	if err != nil {
		if err = mapError(err); errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule override: %w", err)
	}
	return &o, nil
}

func (r *scheduleRepository) ListOverrides(ctx context.Context, doctorID uuid.UUID, from model.Date) ([]model.ScheduleOverride, error) {
	overrides := []model.ScheduleOverride{}
	err := r.db.SelectContext(ctx, &overrides, `
		SELECT `+overrideColumns+`
		FROM doctor_schedule_overrides
		WHERE doctor_id = $1 AND override_date >= $2
		ORDER BY override_date`, doctorID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule overrides: %w", err)
	}
	return overrides, nil
}

// CreateOverride inserts or replaces the override for the doctor, branch
// and date.
func (r *scheduleRepository) CreateOverride(ctx context.Context, o *model.ScheduleOverride) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	err := r.db.GetContext(ctx, &o.ID, `
		INSERT INTO doctor_schedule_overrides (
			id, doctor_id, branch_id, override_date, is_available,
			start_time, end_time, reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (doctor_id, branch_id, override_date) DO UPDATE SET
			is_available = EXCLUDED.is_available,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			reason = EXCLUDED.reason,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		o.ID, o.DoctorID, o.BranchID, o.OverrideDate, o.IsAvailable,
		o.StartTime, o.EndTime, o.Reason, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save schedule override: %w", mapError(err))
	}
	return nil
}

// ListBookedSlots returns the time ranges held by non-cancelled
// appointments of the doctor on date.
func (r *scheduleRepository) ListBookedSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.BookedSlot, error) {
	slots := []model.BookedSlot{}
	err := r.db.SelectContext(ctx, &slots, `
		SELECT to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time
		FROM appointments
		WHERE doctor_id = $1 AND scheduled_date = $2 AND status <> 'cancelled'
		ORDER BY start_time`, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}
	return slots, nil
}
