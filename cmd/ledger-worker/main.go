// Command ledger-worker runs the scheduled batch jobs: daily interest,
// suspicious activity sweeps and idempotency key cleanup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/retailbank/ledger/internal/config"
	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/identifier"
	"github.com/retailbank/ledger/internal/jobs"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/retailbank/ledger/internal/service"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger("ledger-worker")
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("ledger worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("ledger worker stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	largeAmount, err := decimal.NewFromString(cfg.Jobs.LargeTransactionThreshold)
	if err != nil {
		return fmt.Errorf("invalid LARGE_TRANSACTION_THRESHOLD: %w", err)
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	publisher, err := notify.NewPublisher(&cfg.AMQP, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	notifier := notify.NewNotifier(publisher, logger)

	accountService := service.NewAccountService(database, identifier.NewGenerator(&cfg.Identifier), notifier, logger)
	activityService := service.NewActivityService(database, notifier, service.ActivityThresholds{
		LargeAmount:   largeAmount,
		FrequentCount: cfg.Jobs.FrequentTransactionThreshold,
		Window:        cfg.Jobs.TimeWindow,
	}, logger)

	runner := jobs.NewJobs(
		accountService,
		activityService,
		repository.NewIdempotencyRepository(database),
		cfg.Jobs.IdempotencyRetention,
		logger,
	)

	scheduler := jobs.NewScheduler(runner, cfg.Jobs, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}
	logger.Info("ledger worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker, waiting for running jobs...")
	<-scheduler.Stop().Done()

	return nil
}
