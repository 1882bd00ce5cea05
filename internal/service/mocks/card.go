package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCardManager is a mock of service.CardManager
type MockCardManager struct {
	mock.Mock
}

// NewMockCardManager creates a mock that asserts its expectations on cleanup
func NewMockCardManager(t testingT) *MockCardManager {
	m := &MockCardManager{}
	register(&m.Mock, t)
	return m
}

func (m *MockCardManager) IssueCard(ctx context.Context, userID uuid.UUID, bankAccountNumber string) (*models.VirtualCard, error) {
	ret := m.Called(ctx, userID, bankAccountNumber)
	return getOrNil[*models.VirtualCard](ret, 0), ret.Error(1)
}

func (m *MockCardManager) ListCards(ctx context.Context, userID uuid.UUID) ([]*models.VirtualCard, error) {
	ret := m.Called(ctx, userID)
	return getOrNil[[]*models.VirtualCard](ret, 0), ret.Error(1)
}

func (m *MockCardManager) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*models.VirtualCard, error) {
	ret := m.Called(ctx, userID, cardID)
	return getOrNil[*models.VirtualCard](ret, 0), ret.Error(1)
}

func (m *MockCardManager) TopUp(ctx context.Context, userID, cardID uuid.UUID, amount decimal.Decimal) (*models.VirtualCard, error) {
	ret := m.Called(ctx, userID, cardID, amount)
	return getOrNil[*models.VirtualCard](ret, 0), ret.Error(1)
}

func (m *MockCardManager) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	ret := m.Called(ctx, userID, cardID)
	return ret.Error(0)
}
