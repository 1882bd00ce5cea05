package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/stretchr/testify/mock"
)

// MockTransactionQuerier is a mock of service.TransactionQuerier
type MockTransactionQuerier struct {
	mock.Mock
}

// NewMockTransactionQuerier creates a mock that asserts its expectations on cleanup
func NewMockTransactionQuerier(t testingT) *MockTransactionQuerier {
	m := &MockTransactionQuerier{}
	register(&m.Mock, t)
	return m
}

func (m *MockTransactionQuerier) Query(
	ctx context.Context,
	userID uuid.UUID,
	filter models.TransactionFilter,
	page int,
) (*models.TransactionPage, error) {
	ret := m.Called(ctx, userID, filter, page)
	return getOrNil[*models.TransactionPage](ret, 0), ret.Error(1)
}

// MockReportRequester is a mock of service.ReportRequester
type MockReportRequester struct {
	mock.Mock
}

// NewMockReportRequester creates a mock that asserts its expectations on cleanup
func NewMockReportRequester(t testingT) *MockReportRequester {
	m := &MockReportRequester{}
	register(&m.Mock, t)
	return m
}

func (m *MockReportRequester) RequestTransactionReport(ctx context.Context, req notify.ReportRequest) error {
	ret := m.Called(ctx, req)
	return ret.Error(0)
}

// MockActivityDetector is a mock of service.ActivityDetector
type MockActivityDetector struct {
	mock.Mock
}

// NewMockActivityDetector creates a mock that asserts its expectations on cleanup
func NewMockActivityDetector(t testingT) *MockActivityDetector {
	m := &MockActivityDetector{}
	register(&m.Mock, t)
	return m
}

func (m *MockActivityDetector) Detect(ctx context.Context, now time.Time) (int, error) {
	ret := m.Called(ctx, now)
	return ret.Int(0), ret.Error(1)
}
