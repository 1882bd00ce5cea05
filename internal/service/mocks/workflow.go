package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTransferProcessor is a mock of service.TransferProcessor
type MockTransferProcessor struct {
	mock.Mock
}

// NewMockTransferProcessor creates a mock that asserts its expectations on cleanup
func NewMockTransferProcessor(t testingT) *MockTransferProcessor {
	m := &MockTransferProcessor{}
	register(&m.Mock, t)
	return m
}

func (m *MockTransferProcessor) Initiate(
	ctx context.Context,
	userID uuid.UUID,
	req service.TransferRequest,
) (*models.PendingTransfer, error) {
	ret := m.Called(ctx, userID, req)
	return getOrNil[*models.PendingTransfer](ret, 0), ret.Error(1)
}

func (m *MockTransferProcessor) VerifySecurityQuestion(
	ctx context.Context,
	userID uuid.UUID,
	answer string,
) (*models.PendingTransfer, error) {
	ret := m.Called(ctx, userID, answer)
	return getOrNil[*models.PendingTransfer](ret, 0), ret.Error(1)
}

func (m *MockTransferProcessor) VerifyOTPAndCommit(ctx context.Context, userID uuid.UUID, otp string) (*models.Transaction, error) {
	ret := m.Called(ctx, userID, otp)
	return getOrNil[*models.Transaction](ret, 0), ret.Error(1)
}

// MockWithdrawalProcessor is a mock of service.WithdrawalProcessor
type MockWithdrawalProcessor struct {
	mock.Mock
}

// NewMockWithdrawalProcessor creates a mock that asserts its expectations on cleanup
func NewMockWithdrawalProcessor(t testingT) *MockWithdrawalProcessor {
	m := &MockWithdrawalProcessor{}
	register(&m.Mock, t)
	return m
}

func (m *MockWithdrawalProcessor) Initiate(
	ctx context.Context,
	userID uuid.UUID,
	accountNumber string,
	amount decimal.Decimal,
) (*models.PendingWithdrawal, error) {
	ret := m.Called(ctx, userID, accountNumber, amount)
	return getOrNil[*models.PendingWithdrawal](ret, 0), ret.Error(1)
}

func (m *MockWithdrawalProcessor) VerifyUsernameAndWithdraw(
	ctx context.Context,
	userID uuid.UUID,
	username string,
) (*models.Account, *models.Transaction, error) {
	ret := m.Called(ctx, userID, username)
	return getOrNil[*models.Account](ret, 0), getOrNil[*models.Transaction](ret, 1), ret.Error(2)
}
