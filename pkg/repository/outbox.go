package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

// OutboxRepository is the part of the outbox store pkg/worker needs.
type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, final bool) error
}

// OutboxPruner deletes published events past their retention.
type OutboxPruner interface {
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
