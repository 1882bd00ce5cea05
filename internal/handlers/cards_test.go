package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/api"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func sampleCard(userID uuid.UUID) *models.VirtualCard {
	return &models.VirtualCard{
		ID:            uuid.New(),
		UserID:        userID,
		BankAccountID: uuid.New(),
		CardNumber:    "4101123456789012",
		CVV:           "790",
		ExpiryDate:    time.Date(2029, time.June, 1, 0, 0, 0, 0, time.UTC),
		Balance:       decimal.RequireFromString("25"),
		Status:        models.CardStatusActive,
		CreatedAt:     time.Now(),
	}
}

func TestListVirtualCards(t *testing.T) {
	deps := newTestDeps(t)
	identity := customer()
	deps.cards.On("ListCards", mock.Anything, identity.UserID).
		Return([]*models.VirtualCard{sampleCard(identity.UserID)}, nil)

	rec := deps.serve(identity, http.MethodGet, "/api/v1/virtual-cards", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	cards := decodeBody[[]api.VirtualCard](t, rec)
	if assert.Len(t, cards, 1) {
		assert.Equal(t, "790", cards[0].CVV)
		assert.Equal(t, "25.00", cards[0].Balance)
		assert.Equal(t, "2029-06-01", cards[0].ExpiryDate.String())
	}
}

func TestIssueVirtualCard(t *testing.T) {
	t.Run("issued", func(t *testing.T) {
		deps := newTestDeps(t)
		identity := customer()
		deps.cards.On("IssueCard", mock.Anything, identity.UserID, "0101001100000018").
			Return(sampleCard(identity.UserID), nil)

		rec := deps.serve(identity, http.MethodPost, "/api/v1/virtual-cards", `{"bank_account_number":"0101001100000018"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("limit reached", func(t *testing.T) {
		deps := newTestDeps(t)
		identity := customer()
		deps.cards.On("IssueCard", mock.Anything, identity.UserID, "0101001100000018").
			Return(nil, svcErr(service.ErrCodeCardLimitExceeded))

		rec := deps.serve(identity, http.MethodPost, "/api/v1/virtual-cards", `{"bank_account_number":"0101001100000018"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGetVirtualCard(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		deps := newTestDeps(t)
		identity := customer()
		card := sampleCard(identity.UserID)
		deps.cards.On("GetCard", mock.Anything, identity.UserID, card.ID).Return(card, nil)

		rec := deps.serve(identity, http.MethodGet, "/api/v1/virtual-cards/"+card.ID.String(), "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, card.ID, decodeBody[api.VirtualCard](t, rec).ID)
	})

	t.Run("another user's card", func(t *testing.T) {
		deps := newTestDeps(t)
		identity := customer()
		cardID := uuid.New()
		deps.cards.On("GetCard", mock.Anything, identity.UserID, cardID).Return(nil, svcErr(service.ErrCodeCardNotFound))

		rec := deps.serve(identity, http.MethodGet, "/api/v1/virtual-cards/"+cardID.String(), "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := newTestDeps(t)

		rec := deps.serve(customer(), http.MethodGet, "/api/v1/virtual-cards/1234", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteVirtualCard(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		deps := newTestDeps(t)
		identity := customer()
		cardID := uuid.New()
		deps.cards.On("DeleteCard", mock.Anything, identity.UserID, cardID).Return(nil)

		rec := deps.serve(identity, http.MethodDelete, "/api/v1/virtual-cards/"+cardID.String(), "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("balance remaining", func(t *testing.T) {
		deps := newTestDeps(t)
		identity := customer()
		cardID := uuid.New()
		deps.cards.On("DeleteCard", mock.Anything, identity.UserID, cardID).Return(svcErr(service.ErrCodeNonZeroBalance))

		rec := deps.serve(identity, http.MethodDelete, "/api/v1/virtual-cards/"+cardID.String(), "")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestTopUpVirtualCard(t *testing.T) {
	t.Run("topped up", func(t *testing.T) {
		deps := newTestDeps(t)
		identity := customer()
		card := sampleCard(identity.UserID)
		card.Balance = decimal.RequireFromString("75")
		deps.cards.On("TopUp", mock.Anything, identity.UserID, card.ID, decEq("50")).Return(card, nil)

		rec := deps.serve(identity, http.MethodPost, "/api/v1/virtual-cards/"+card.ID.String()+"/top-up", `{"amount":"50.00"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "75.00", decodeBody[api.VirtualCard](t, rec).Balance)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		deps := newTestDeps(t)
		identity := customer()
		cardID := uuid.New()
		deps.cards.On("TopUp", mock.Anything, identity.UserID, cardID, decEq("5000")).
			Return(nil, svcErr(service.ErrCodeInsufficientFunds))

		rec := deps.serve(identity, http.MethodPost, "/api/v1/virtual-cards/"+cardID.String()+"/top-up", `{"amount":"5000"}`)

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})
}
