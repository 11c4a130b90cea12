package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}

func (r *outboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = 'PROCESSING'
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = 'PENDING'
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT $1
		)
		RETURNING id, event_type, aggregate_id, payload, status, error_message,
		          retry_count, created_at, processed_at
	`
	events := []*model.OutboxEvent{}
	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("failed to claim outbox events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE outbox_events
		SET status = 'PROCESSED', processed_at = $1, error_message = NULL
		WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event processed: %w", err)
	}
	return expectOne(res)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, final bool) error {
	status := model.OutboxStatusPending
	if final {
		status = model.OutboxStatusFailed
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE outbox_events
		SET status = $1, error_message = $2, retry_count = retry_count + 1
		WHERE id = $3`, status, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event failed: %w", err)
	}
	return expectOne(res)
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'PROCESSED'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}
