package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCardRepository is a mock of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

// NewMockCardRepository creates a mock that asserts its expectations on cleanup
func NewMockCardRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCardRepository {
	m := &MockCardRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCardRepository) Create(ctx context.Context, card *models.VirtualCard) error {
	ret := m.Called(ctx, card)
	return ret.Error(0)
}

func (m *MockCardRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*models.VirtualCard, error) {
	ret := m.Called(ctx, id, userID)
	return cardOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockCardRepository) FindByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*models.VirtualCard, error) {
	ret := m.Called(ctx, id, userID)
	return cardOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockCardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.VirtualCard, error) {
	ret := m.Called(ctx, userID)
	var r0 []*models.VirtualCard
	if v := ret.Get(0); v != nil {
		r0 = v.([]*models.VirtualCard)
	}
	return r0, ret.Error(1)
}

func (m *MockCardRepository) ExistsByCardNumber(ctx context.Context, cardNumber string) (bool, error) {
	ret := m.Called(ctx, cardNumber)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockCardRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	ret := m.Called(ctx, userID)
	return ret.Int(0), ret.Error(1)
}

func (m *MockCardRepository) AdjustBalance(ctx context.Context, cardID uuid.UUID, delta decimal.Decimal) error {
	ret := m.Called(ctx, cardID, delta)
	return ret.Error(0)
}

func (m *MockCardRepository) Delete(ctx context.Context, cardID uuid.UUID) error {
	ret := m.Called(ctx, cardID)
	return ret.Error(0)
}

func cardOrNil(v any) *models.VirtualCard {
	if v == nil {
		return nil
	}
	return v.(*models.VirtualCard)
}
