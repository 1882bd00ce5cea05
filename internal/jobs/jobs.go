// Package jobs runs the ledger's scheduled batch work: daily interest,
// suspicious activity sweeps and idempotency key cleanup.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailbank/ledger/internal/service"
)

// IdempotencyPurger removes cached responses older than a cutoff
type IdempotencyPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	interest  service.InterestApplier
	activity  service.ActivityDetector
	purger    IdempotencyPurger
	logger    *slog.Logger
	now       func() time.Time
	retention time.Duration
}

// NewJobs creates a new Jobs runner.
func NewJobs(
	interest service.InterestApplier,
	activity service.ActivityDetector,
	purger IdempotencyPurger,
	retention time.Duration,
	logger *slog.Logger,
) *Jobs {
	return &Jobs{
		interest:  interest,
		activity:  activity,
		purger:    purger,
		logger:    logger,
		now:       time.Now,
		retention: retention,
	}
}

// InterestSummary counts the outcome of one interest run
type InterestSummary struct {
	Credited int
	Skipped  int
	Failed   int
}

// ApplyDailyInterest credits one day of interest to every savings account.
// Each account runs in its own transaction so one failure does not stop the rest.
func (j *Jobs) ApplyDailyInterest() {
	j.runDailyInterest(context.Background())
}

func (j *Jobs) runDailyInterest(ctx context.Context) InterestSummary {
	var summary InterestSummary
	j.logger.Info("starting daily interest job")

	accountIDs, err := j.interest.ListSavingsAccountIDs(ctx)
	if err != nil {
		j.logger.Error("failed to list savings accounts", "error", err)
		return summary
	}

	if len(accountIDs) == 0 {
		j.logger.Info("no savings accounts to credit")
		return summary
	}

	for _, accountID := range accountIDs {
		credited, err := j.interest.ApplyDailyInterest(ctx, accountID)
		switch {
		case err != nil:
			summary.Failed++
			j.logger.Error("failed to apply interest", "account_id", accountID, "error", err)
		case credited.IsZero():
			summary.Skipped++
		default:
			summary.Credited++
		}
	}

	j.logger.Info("daily interest job finished",
		"accounts", len(accountIDs),
		"credited", summary.Credited,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary
}

// DetectSuspiciousActivity sweeps the journal window ending now
func (j *Jobs) DetectSuspiciousActivity() {
	ctx := context.Background()
	j.logger.Info("starting suspicious activity job")

	findings, err := j.activity.Detect(ctx, j.now())
	if err != nil {
		j.logger.Error("suspicious activity detection failed", "error", err)
		return
	}

	j.logger.Info("suspicious activity job finished", "findings", findings)
}

// PurgeIdempotencyKeys removes replay entries past the retention period
func (j *Jobs) PurgeIdempotencyKeys() {
	ctx := context.Background()
	cutoff := j.now().Add(-j.retention)

	removed, err := j.purger.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("failed to purge idempotency keys", "error", err, "cutoff", cutoff)
		return
	}

	j.logger.Info("idempotency keys purged", "removed", removed, "cutoff", cutoff)
}
