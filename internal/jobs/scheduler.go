package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/retailbank/ledger/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.JobsConfig
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, cfg config.JobsConfig, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler. An invalid
// schedule is returned before anything runs.
func (s *Scheduler) Start() error {
	entries := []struct {
		name     string
		schedule string
		run      func()
	}{
		{"daily interest", s.config.InterestSchedule, s.jobs.ApplyDailyInterest},
		{"suspicious activity", s.config.SuspiciousActivitySchedule, s.jobs.DetectSuspiciousActivity},
		{"idempotency purge", s.config.IdempotencyPurgeSchedule, s.jobs.PurgeIdempotencyKeys},
	}

	for _, entry := range entries {
		if _, err := s.cron.AddFunc(entry.schedule, entry.run); err != nil {
			return fmt.Errorf("failed to schedule %s job: %w", entry.name, err)
		}
		s.logger.Info("scheduled job", "job", entry.name, "schedule", entry.schedule)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler. The returned context is done once running jobs complete.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries reports how many jobs are registered
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
