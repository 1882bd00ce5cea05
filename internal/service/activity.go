package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
)

// FindingKind names the pattern a finding matched
type FindingKind string

const (
	FindingLargeTransaction   FindingKind = "large_transaction"
	FindingFrequentActivity   FindingKind = "frequent_transactions"
	FindingLargeBalanceChange FindingKind = "large_balance_change"
)

// Finding is one suspicious pattern found in the window
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Subject string      `json:"subject"`
	Detail  string      `json:"detail"`
}

// ActivityThresholds configures what counts as suspicious
type ActivityThresholds struct {
	LargeAmount   decimal.Decimal
	FrequentCount int
	Window        time.Duration
}

// ActivityService scans the journal for suspicious patterns and raises one alert per sweep
type ActivityService struct {
	db         *db.DB
	notifier   NotificationSink
	logger     *slog.Logger
	thresholds ActivityThresholds
}

// NewActivityService creates a new ActivityService
func NewActivityService(database *db.DB, notifier NotificationSink, thresholds ActivityThresholds, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		db:         database,
		notifier:   notifier,
		logger:     logger,
		thresholds: thresholds,
	}
}

// Detect runs every check over the window ending at now and returns how many
// findings were reported. A failing check does not stop the others.
func (s *ActivityService) Detect(ctx context.Context, now time.Time) (int, error) {
	return s.performDetect(ctx, repository.NewTransactionRepository(s.db), now)
}

func (s *ActivityService) performDetect(
	ctx context.Context,
	transactionRepo repository.TransactionRepository,
	now time.Time,
) (int, error) {
	since := now.Add(-s.thresholds.Window)

	var (
		findings []Finding
		errs     []error
	)

	large, err := transactionRepo.ListLargeSince(ctx, since, s.thresholds.LargeAmount)
	if err != nil {
		errs = append(errs, fmt.Errorf("large transactions: %w", err))
	}
	for _, txn := range large {
		findings = append(findings, Finding{
			Kind:    FindingLargeTransaction,
			Subject: txn.ID.String(),
			Detail:  fmt.Sprintf("%s of %s", txn.Type, txn.Amount.StringFixed(2)),
		})
	}

	frequent, err := transactionRepo.CountByUserSince(ctx, since, s.thresholds.FrequentCount)
	if err != nil {
		errs = append(errs, fmt.Errorf("frequent transactions: %w", err))
	}
	for _, activity := range frequent {
		findings = append(findings, Finding{
			Kind:    FindingFrequentActivity,
			Subject: activity.UserID.String(),
			Detail:  fmt.Sprintf("%d transactions", activity.Count),
		})
	}

	changes, err := transactionRepo.NetChangeSince(ctx, since, s.thresholds.LargeAmount)
	if err != nil {
		errs = append(errs, fmt.Errorf("balance changes: %w", err))
	}
	for _, change := range changes {
		findings = append(findings, Finding{
			Kind:    FindingLargeBalanceChange,
			Subject: change.AccountNumber,
			Detail:  fmt.Sprintf("net change of %s", change.Net.StringFixed(2)),
		})
	}

	if len(findings) > 0 {
		s.logger.Warn("suspicious activity detected",
			"findings", len(findings),
			"since", since,
		)
		s.notifier.Notify(ctx, notify.NewEvent(notify.EventSuspiciousActivity, nil, map[string]any{
			"window_start": since,
			"window_end":   now,
			"findings":     findings,
		}))
	}

	if len(errs) > 0 {
		return len(findings), internalError("activity checks failed", errors.Join(errs...))
	}
	return len(findings), nil
}
