package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging/redis"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "booking-api",
		Short:        "Clinic appointment booking API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *sqlx.DB
	broker *redis.RedisBroker
}

func bootstrap(ctx context.Context, withBroker bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Log.Console,
	})
	logger.SetGlobal(log)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := postgres.NewDB(connectCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, db: db}
	if !withBroker {
		return a, nil
	}

	a.broker, err = redis.NewRedisBroker(connectCtx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, *log.Zerolog())
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.log.Error(err, "failed to close broker")
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Error(err, "failed to close database")
	}
}
