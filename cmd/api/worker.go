package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/worker"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Publish outbox events and prune processed ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context())
		},
	}
}

func runWorker(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	processor, cleanup := outboxWorkers(a, metrics.New("booking", nil))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()

	a.log.Info("worker started")
	<-ctx.Done()
	a.log.Info("shutting down worker...")
	wg.Wait()
	return nil
}

func outboxWorkers(a *app, m *metrics.Metrics) (*worker.OutboxProcessor, *worker.OutboxCleanupWorker) {
	repo := postgres.NewOutboxRepository(a.db)
	cfg := a.cfg.Outbox

	processor := worker.NewOutboxProcessor(repo, a.broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.BatchSize,
		PollInterval:  cfg.PollInterval,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		MaxFailures:   cfg.MaxFailures,
	}, a.log, m)

	cleanup := worker.NewOutboxCleanupWorker(repo, cfg.Retention, time.Hour, a.log)
	return processor, cleanup
}
