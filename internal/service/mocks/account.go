package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountManager is a mock of service.AccountManager
type MockAccountManager struct {
	mock.Mock
}

// NewMockAccountManager creates a mock that asserts its expectations on cleanup
func NewMockAccountManager(t testingT) *MockAccountManager {
	m := &MockAccountManager{}
	register(&m.Mock, t)
	return m
}

func (m *MockAccountManager) CreateAccount(
	ctx context.Context,
	userID uuid.UUID,
	currency models.Currency,
	accountType models.AccountType,
) (*models.Account, error) {
	ret := m.Called(ctx, userID, currency, accountType)
	return getOrNil[*models.Account](ret, 0), ret.Error(1)
}

func (m *MockAccountManager) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*models.Account, error) {
	ret := m.Called(ctx, ownerID)
	return getOrNil[[]*models.Account](ret, 0), ret.Error(1)
}

func (m *MockAccountManager) SetPrimary(ctx context.Context, ownerID uuid.UUID, accountNumber string) (*models.Account, error) {
	ret := m.Called(ctx, ownerID, accountNumber)
	return getOrNil[*models.Account](ret, 0), ret.Error(1)
}

func (m *MockAccountManager) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.Account, error) {
	ret := m.Called(ctx, accountNumber, amount)
	return getOrNil[*models.Account](ret, 0), ret.Error(1)
}

func (m *MockAccountManager) LookupAccount(ctx context.Context, accountNumber string) (*models.AccountOwner, error) {
	ret := m.Called(ctx, accountNumber)
	return getOrNil[*models.AccountOwner](ret, 0), ret.Error(1)
}

func (m *MockAccountManager) VerifyKYC(
	ctx context.Context,
	accountID uuid.UUID,
	update service.KYCUpdate,
	staffID uuid.UUID,
) (*models.Account, error) {
	ret := m.Called(ctx, accountID, update, staffID)
	return getOrNil[*models.Account](ret, 0), ret.Error(1)
}

// MockInterestApplier is a mock of service.InterestApplier
type MockInterestApplier struct {
	mock.Mock
}

// NewMockInterestApplier creates a mock that asserts its expectations on cleanup
func NewMockInterestApplier(t testingT) *MockInterestApplier {
	m := &MockInterestApplier{}
	register(&m.Mock, t)
	return m
}

func (m *MockInterestApplier) ListSavingsAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	ret := m.Called(ctx)
	return getOrNil[[]uuid.UUID](ret, 0), ret.Error(1)
}

func (m *MockInterestApplier) ApplyDailyInterest(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	ret := m.Called(ctx, accountID)
	return getOrNil[decimal.Decimal](ret, 0), ret.Error(1)
}
