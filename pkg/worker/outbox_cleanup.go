package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/repository"
)

// OutboxCleanupWorker deletes published outbox events once they are older
// than the retention window.
type OutboxCleanupWorker struct {
	repo      repository.OutboxPruner
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

func NewOutboxCleanupWorker(repo repository.OutboxPruner, retention, interval time.Duration, log *logger.Logger) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    log,
		now:       time.Now,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Cleanup(ctx); err != nil {
				w.logger.Error(err, "Failed to clean up outbox events")
			}
		}
	}
}

func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)
	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		w.logger.Info("Cleaned up outbox events", "rows", rows, "cutoff", cutoff.Format(time.RFC3339))
	}
	return rows, nil
}
