package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

const appointmentColumns = `a.id, a.patient_id, a.doctor_id, a.service_id, a.branch_id,
	a.scheduled_date,
	to_char(a.start_time, 'HH24:MI') AS start_time,
	to_char(a.end_time, 'HH24:MI') AS end_time,
	a.duration_minutes, a.status, a.booking_type, a.reason, a.price, a.currency,
	a.notes, a.cancel_reason, a.confirmed_at, a.checked_in_at, a.completed_at,
	a.cancelled_at, a.created_at, a.updated_at`

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment, log *model.AppointmentLog, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO appointments (
				id, patient_id, doctor_id, service_id, branch_id, scheduled_date,
				start_time, end_time, duration_minutes, status, booking_type,
				reason, price, currency, notes, created_at, updated_at
			) VALUES (
				:id, :patient_id, :doctor_id, :service_id, :branch_id, :scheduled_date,
				:start_time, :end_time, :duration_minutes, :status, :booking_type,
				:reason, :price, :currency, :notes, :created_at, :updated_at
			)`, appt)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", mapError(err))
		}
		if err := insertLog(ctx, tx, log); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, event)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, `SELECT `+appointmentColumns+` FROM appointments a WHERE a.id = $1`, id)
	if err != nil {
		return nil, mapError(err)
	}
	return &appt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	var where []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.PatientID != nil {
		where = append(where, "a.patient_id = "+arg(*filters.PatientID))
	}
	if filters.DoctorID != nil {
		where = append(where, "a.doctor_id = "+arg(*filters.DoctorID))
	}
	if filters.BranchID != nil {
		where = append(where, "a.branch_id = "+arg(*filters.BranchID))
	}
	if filters.Status != "" {
		where = append(where, "a.status = "+arg(filters.Status))
	}
	if filters.From != nil {
		where = append(where, "a.scheduled_date >= "+arg(*filters.From))
	}
	if filters.To != nil {
		where = append(where, "a.scheduled_date <= "+arg(*filters.To))
	}
	cond := "TRUE"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM appointments a WHERE `+cond, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	p := filters.Pagination.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM appointments a WHERE %s
		ORDER BY a.scheduled_date DESC, a.start_time DESC LIMIT %s OFFSET %s`,
		appointmentColumns, cond, arg(p.PageSize), arg(p.Offset()))

	appts := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, total, nil
}

// UpdateStatus is a compare-and-set on the stored status.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, appt *model.Appointment, from model.AppointmentStatus, log *model.AppointmentLog, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE appointments SET
				status = $1,
				cancel_reason = $2,
				confirmed_at = $3,
				checked_in_at = $4,
				completed_at = $5,
				cancelled_at = $6,
				updated_at = $7
			WHERE id = $8 AND status = $9`,
			appt.Status, appt.CancelReason, appt.ConfirmedAt, appt.CheckedInAt,
			appt.CompletedAt, appt.CancelledAt, appt.UpdatedAt, appt.ID, from)
		if err != nil {
			return fmt.Errorf("failed to update appointment status: %w", mapError(err))
		}
		if err := expectOne(res); err != nil {
			if err == repository.ErrNotFound {
				return repository.ErrStaleState
			}
			return err
		}
		if err := insertLog(ctx, tx, log); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, event)
	})
}

func (r *appointmentRepository) AddNote(ctx context.Context, note *model.AppointmentNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO appointment_notes (id, appointment_id, author_id, content, is_private, created_at)
		VALUES (:id, :appointment_id, :author_id, :content, :is_private, :created_at)`, note)
	if err != nil {
		return fmt.Errorf("failed to add note: %w", mapError(err))
	}
	return nil
}

func (r *appointmentRepository) ListNotes(ctx context.Context, appointmentID uuid.UUID, includePrivate bool) ([]*model.AppointmentNote, error) {
	notes := []*model.AppointmentNote{}
	err := r.db.SelectContext(ctx, &notes, `
		SELECT id, appointment_id, author_id, content, is_private, created_at
		FROM appointment_notes
		WHERE appointment_id = $1 AND ($2 OR NOT is_private)
		ORDER BY created_at`, appointmentID, includePrivate)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (r *appointmentRepository) ListLogs(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentLog, error) {
	logs := []*model.AppointmentLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, appointment_id, action, actor_id, previous_state, new_state, created_at
		FROM appointment_logs
		WHERE appointment_id = $1
		ORDER BY created_at`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment logs: %w", err)
	}
	return logs, nil
}

func scopeCondition(scope repository.DashboardScope) (string, []interface{}) {
	if scope.DoctorID != nil {
		return "doctor_id = $1 AND scheduled_date = $2", []interface{}{*scope.DoctorID, scope.Date}
	}
	return "branch_id = $1 AND scheduled_date = $2", []interface{}{*scope.BranchID, scope.Date}
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, scope repository.DashboardScope) (map[model.AppointmentStatus]int, error) {
	cond, args := scopeCondition(scope)
	var rows []struct {
		Status model.AppointmentStatus `db:"status"`
		Count  int                     `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM appointments WHERE `+cond+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	counts := make(map[model.AppointmentStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *appointmentRepository) ListUpcoming(ctx context.Context, scope repository.DashboardScope, limit int) ([]*model.Appointment, error) {
	cond, args := scopeCondition(scope)
	args = append(args, limit)
	appts := []*model.Appointment{}
	err := r.db.SelectContext(ctx, &appts, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		WHERE `+strings.ReplaceAll(strings.ReplaceAll(cond, "doctor_id", "a.doctor_id"), "branch_id", "a.branch_id")+`
		  AND a.status IN ('pending', 'confirmed', 'checked_in')
		ORDER BY a.start_time
		LIMIT $3`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}
	return appts, nil
}

func insertLog(ctx context.Context, tx *sqlx.Tx, log *model.AppointmentLog) error {
	if log == nil {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO appointment_logs (id, appointment_id, action, actor_id, previous_state, new_state, created_at)
		VALUES (:id, :appointment_id, :action, :actor_id, :previous_state, :new_state, :created_at)`, log)
	if err != nil {
		return fmt.Errorf("failed to write appointment log: %w", err)
	}
	return nil
}

func insertOutbox(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	if event == nil {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO outbox_events (id, event_type, aggregate_id, payload, status, retry_count, created_at)
		VALUES (:id, :event_type, :aggregate_id, :payload, :status, :retry_count, :created_at)`, event)
	if err != nil {
		return fmt.Errorf("failed to write outbox event: %w", err)
	}
	return nil
}
