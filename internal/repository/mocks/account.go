// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock of repository.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock that asserts its expectations on cleanup
func NewMockAccountRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	ret := m.Called(ctx, account)
	return ret.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	ret := m.Called(ctx, id)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	ret := m.Called(ctx, id)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	ret := m.Called(ctx, accountNumber)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountRepository) FindByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*models.Account, error) {
	ret := m.Called(ctx, accountNumber)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountRepository) FindWithOwner(ctx context.Context, accountNumber string) (*models.AccountOwner, error) {
	ret := m.Called(ctx, accountNumber)
	var r0 *models.AccountOwner
	if v := ret.Get(0); v != nil {
		r0 = v.(*models.AccountOwner)
	}
	return r0, ret.Error(1)
}

func (m *MockAccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	ret := m.Called(ctx, accountNumber)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Account, error) {
	ret := m.Called(ctx, userID)
	var r0 []*models.Account
	if v := ret.Get(0); v != nil {
		r0 = v.([]*models.Account)
	}
	return r0, ret.Error(1)
}

func (m *MockAccountRepository) ListSavingsIDs(ctx context.Context) ([]uuid.UUID, error) {
	ret := m.Called(ctx)
	var r0 []uuid.UUID
	if v := ret.Get(0); v != nil {
		r0 = v.([]uuid.UUID)
	}
	return r0, ret.Error(1)
}

func (m *MockAccountRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	ret := m.Called(ctx, userID)
	return ret.Int(0), ret.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	ret := m.Called(ctx, accountID, delta)
	return ret.Error(0)
}

func (m *MockAccountRepository) UpdateInterestRate(ctx context.Context, accountID uuid.UUID, rate decimal.Decimal) error {
	ret := m.Called(ctx, accountID, rate)
	return ret.Error(0)
}

func (m *MockAccountRepository) UpdateVerification(ctx context.Context, account *models.Account) error {
	ret := m.Called(ctx, account)
	return ret.Error(0)
}

func (m *MockAccountRepository) ClearPrimary(ctx context.Context, userID, exceptID uuid.UUID) error {
	ret := m.Called(ctx, userID, exceptID)
	return ret.Error(0)
}

func (m *MockAccountRepository) MarkPrimary(ctx context.Context, accountID uuid.UUID) error {
	ret := m.Called(ctx, accountID)
	return ret.Error(0)
}

func accountOrNil(v any) *models.Account {
	if v == nil {
		return nil
	}
	return v.(*models.Account)
}
