package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock of repository.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates a mock that asserts its expectations on cleanup
func NewMockTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	ret := m.Called(ctx, tx)
	return ret.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	ret := m.Called(ctx, id)
	var r0 *models.Transaction
	if v := ret.Get(0); v != nil {
		r0 = v.(*models.Transaction)
	}
	return r0, ret.Error(1)
}

func (m *MockTransactionRepository) ListForUser(ctx context.Context, q repository.TransactionQuery) ([]*models.Transaction, error) {
	ret := m.Called(ctx, q)
	return transactionsOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockTransactionRepository) CountForUser(ctx context.Context, q repository.TransactionQuery) (int, error) {
	ret := m.Called(ctx, q)
	return ret.Int(0), ret.Error(1)
}

func (m *MockTransactionRepository) ListLargeSince(ctx context.Context, since time.Time, threshold decimal.Decimal) ([]*models.Transaction, error) {
	ret := m.Called(ctx, since, threshold)
	return transactionsOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockTransactionRepository) CountByUserSince(ctx context.Context, since time.Time, minCount int) ([]repository.UserActivity, error) {
	ret := m.Called(ctx, since, minCount)
	var r0 []repository.UserActivity
	if v := ret.Get(0); v != nil {
		r0 = v.([]repository.UserActivity)
	}
	return r0, ret.Error(1)
}

func (m *MockTransactionRepository) NetChangeSince(ctx context.Context, since time.Time, threshold decimal.Decimal) ([]repository.AccountNetChange, error) {
	ret := m.Called(ctx, since, threshold)
	var r0 []repository.AccountNetChange
	if v := ret.Get(0); v != nil {
		r0 = v.([]repository.AccountNetChange)
	}
	return r0, ret.Error(1)
}

func transactionsOrNil(v any) []*models.Transaction {
	if v == nil {
		return nil
	}
	return v.([]*models.Transaction)
}
