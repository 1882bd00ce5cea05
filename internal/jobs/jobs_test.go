package jobs

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/config"
	repomocks "github.com/retailbank/ledger/internal/repository/mocks"
	"github.com/retailbank/ledger/internal/service/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testJobs struct {
	*Jobs
	interest *mocks.MockInterestApplier
	activity *mocks.MockActivityDetector
	purger   *repomocks.MockIdempotencyRepository
}

func newTestJobs(t *testing.T) *testJobs {
	interest := mocks.NewMockInterestApplier(t)
	activity := mocks.NewMockActivityDetector(t)
	purger := repomocks.NewMockIdempotencyRepository(t)
	return &testJobs{
		Jobs:     NewJobs(interest, activity, purger, 72*time.Hour, testLogger()),
		interest: interest,
		activity: activity,
		purger:   purger,
	}
}

func TestApplyDailyInterest_IsolatesFailures(t *testing.T) {
	j := newTestJobs(t)
	credited, failing, tiny := uuid.New(), uuid.New(), uuid.New()

	j.interest.On("ListSavingsAccountIDs", mock.Anything).Return([]uuid.UUID{credited, failing, tiny}, nil)
	j.interest.On("ApplyDailyInterest", mock.Anything, credited).Return(decimal.RequireFromString("5.48"), nil)
	j.interest.On("ApplyDailyInterest", mock.Anything, failing).Return(decimal.Zero, errors.New("deadlock detected"))
	j.interest.On("ApplyDailyInterest", mock.Anything, tiny).Return(decimal.Zero, nil)

	summary := j.runDailyInterest(t.Context())

	assert.Equal(t, InterestSummary{Credited: 1, Skipped: 1, Failed: 1}, summary)
	j.interest.AssertNumberOfCalls(t, "ApplyDailyInterest", 3)
}

func TestApplyDailyInterest_ListFailureStopsRun(t *testing.T) {
	j := newTestJobs(t)
	j.interest.On("ListSavingsAccountIDs", mock.Anything).Return(nil, errors.New("connection refused"))

	summary := j.runDailyInterest(t.Context())

	assert.Equal(t, InterestSummary{}, summary)
	j.interest.AssertNotCalled(t, "ApplyDailyInterest")
}

func TestApplyDailyInterest_NoAccounts(t *testing.T) {
	j := newTestJobs(t)
	j.interest.On("ListSavingsAccountIDs", mock.Anything).Return([]uuid.UUID{}, nil)

	j.ApplyDailyInterest()

	j.interest.AssertNotCalled(t, "ApplyDailyInterest")
}

func TestDetectSuspiciousActivity_UsesCurrentTime(t *testing.T) {
	j := newTestJobs(t)
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }
	j.activity.On("Detect", mock.Anything, now).Return(2, nil)

	j.DetectSuspiciousActivity()
}

func TestDetectSuspiciousActivity_ErrorIsLogged(t *testing.T) {
	j := newTestJobs(t)
	j.activity.On("Detect", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, errors.New("timeout"))

	assert.NotPanics(t, j.DetectSuspiciousActivity)
}

func TestPurgeIdempotencyKeys_UsesRetention(t *testing.T) {
	j := newTestJobs(t)
	now := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }
	j.purger.On("DeleteOlderThan", mock.Anything, now.Add(-72*time.Hour)).Return(int64(14), nil)

	j.PurgeIdempotencyKeys()
}

func TestScheduler_RegistersJobs(t *testing.T) {
	j := newTestJobs(t)
	cfg := config.JobsConfig{
		InterestSchedule:           "0 0 * * *",
		SuspiciousActivitySchedule: "0 * * * *",
		IdempotencyPurgeSchedule:   "30 3 * * *",
	}

	scheduler := NewScheduler(j.Jobs, cfg, testLogger())
	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()

	assert.Equal(t, 3, scheduler.Entries())
}

func TestScheduler_RejectsInvalidSchedule(t *testing.T) {
	j := newTestJobs(t)
	cfg := config.JobsConfig{
		InterestSchedule:           "every day",
		SuspiciousActivitySchedule: "0 * * * *",
		IdempotencyPurgeSchedule:   "30 3 * * *",
	}

	scheduler := NewScheduler(j.Jobs, cfg, testLogger())
	err := scheduler.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily interest")
}
