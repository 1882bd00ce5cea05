package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/retailbank/ledger/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActivityService() (*ActivityService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewActivityService(nil, notifier, ActivityThresholds{
		LargeAmount:   dec("10000"),
		FrequentCount: 10,
		Window:        24 * time.Hour,
	}, testLogger()), notifier
}

func TestActivityService_PerformDetect(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	since := now.Add(-24 * time.Hour)

	t.Run("reports every finding in one alert", func(t *testing.T) {
		txRepo := mocks.NewMockTransactionRepository(t)
		svc, notifier := newTestActivityService()

		txRepo.On("ListLargeSince", ctx, since, decEq("10000")).Return([]*models.Transaction{
			{ID: uuid.New(), Type: models.TransactionTypeTransfer, Amount: dec("25000")},
		}, nil)
		txRepo.On("CountByUserSince", ctx, since, 10).Return([]repository.UserActivity{
			{UserID: uuid.New(), Count: 14},
		}, nil)
		txRepo.On("NetChangeSince", ctx, since, decEq("10000")).Return([]repository.AccountNetChange{
			{AccountNumber: "0101001100000001", Net: dec("-25000")},
		}, nil)

		count, err := svc.performDetect(ctx, txRepo, now)

		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Equal(t, []notify.EventType{notify.EventSuspiciousActivity}, notifier.types())

		findings, ok := notifier.last().Payload["findings"].([]Finding)
		require.True(t, ok)
		assert.Equal(t, FindingLargeTransaction, findings[0].Kind)
		assert.Equal(t, FindingFrequentActivity, findings[1].Kind)
		assert.Equal(t, FindingLargeBalanceChange, findings[2].Kind)
		assert.Equal(t, "0101001100000001", findings[2].Subject)
	})

	t.Run("quiet window sends nothing", func(t *testing.T) {
		txRepo := mocks.NewMockTransactionRepository(t)
		svc, notifier := newTestActivityService()

		txRepo.On("ListLargeSince", ctx, since, decEq("10000")).Return(nil, nil)
		txRepo.On("CountByUserSince", ctx, since, 10).Return(nil, nil)
		txRepo.On("NetChangeSince", ctx, since, decEq("10000")).Return(nil, nil)

		count, err := svc.performDetect(ctx, txRepo, now)

		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, notifier.types())
	})

	t.Run("a failing check does not hide the others", func(t *testing.T) {
		txRepo := mocks.NewMockTransactionRepository(t)
		svc, notifier := newTestActivityService()

		txRepo.On("ListLargeSince", ctx, since, decEq("10000")).Return(nil, errors.New("timeout"))
		txRepo.On("CountByUserSince", ctx, since, 10).Return([]repository.UserActivity{
			{UserID: uuid.New(), Count: 11},
		}, nil)
		txRepo.On("NetChangeSince", ctx, since, decEq("10000")).Return(nil, nil)

		count, err := svc.performDetect(ctx, txRepo, now)

		assert.Equal(t, 1, count)
		assertServiceErrorCode(t, err, ErrCodeInternalError)
		assert.Contains(t, err.Error(), "large transactions")
		assert.Equal(t, []notify.EventType{notify.EventSuspiciousActivity}, notifier.types())
	})
}
