package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/identifier"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/retailbank/ledger/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCardService(gen NumberGenerator) (*CardService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewCardService(nil, gen, notifier, 3, testLogger()), notifier
}

func TestCardService_PerformIssueCard(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("issues an active card for the owner's account", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository(t)
		accountRepo := mocks.NewMockAccountRepository(t)
		cardRepo := mocks.NewMockCardRepository(t)
		svc, _ := newTestCardService(&stubGenerator{cardNumbers: []string{"4101000000000001", "4101000000000019"}})
		svc.now = func() time.Time { return issuedAt }
		userID := uuid.New()
		account := verifiedAccount(userID, "0101001100000001", "100", models.CurrencyUSD)

		userRepo.On("LockByID", ctx, userID).Return(nil)
		cardRepo.On("CountByUser", ctx, userID).Return(2, nil)
		accountRepo.On("FindByAccountNumber", ctx, account.AccountNumber).Return(account, nil)
		cardRepo.On("ExistsByCardNumber", ctx, "4101000000000001").Return(true, nil)
		cardRepo.On("ExistsByCardNumber", ctx, "4101000000000019").Return(false, nil)
		cardRepo.On("Create", ctx, mock.AnythingOfType("*models.VirtualCard")).Return(nil)

		card, err := svc.performIssueCard(ctx, userRepo, accountRepo, cardRepo, userID, account.AccountNumber)

		require.NoError(t, err)
		assert.Equal(t, "4101000000000019", card.CardNumber)
		assert.Equal(t, account.ID, card.BankAccountID)
		assert.Equal(t, models.CardStatusActive, card.Status)
		assert.True(t, card.Balance.IsZero())
		assert.Equal(t, issuedAt.AddDate(3, 0, 0), card.ExpiryDate)
		assert.Equal(t, "123", card.CVV)
	})

	t.Run("fourth card is refused", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository(t)
		accountRepo := mocks.NewMockAccountRepository(t)
		cardRepo := mocks.NewMockCardRepository(t)
		svc, _ := newTestCardService(&stubGenerator{})
		userID := uuid.New()

		userRepo.On("LockByID", ctx, userID).Return(nil)
		cardRepo.On("CountByUser", ctx, userID).Return(3, nil)

		card, err := svc.performIssueCard(ctx, userRepo, accountRepo, cardRepo, userID, "0101001100000001")

		assert.Nil(t, card)
		assertServiceErrorCode(t, err, ErrCodeCardLimitExceeded)
		cardRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("account of another user", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository(t)
		accountRepo := mocks.NewMockAccountRepository(t)
		cardRepo := mocks.NewMockCardRepository(t)
		svc, _ := newTestCardService(&stubGenerator{})
		userID := uuid.New()
		account := verifiedAccount(uuid.New(), "0101001100000001", "100", models.CurrencyUSD)

		userRepo.On("LockByID", ctx, userID).Return(nil)
		cardRepo.On("CountByUser", ctx, userID).Return(0, nil)
		accountRepo.On("FindByAccountNumber", ctx, account.AccountNumber).Return(account, nil)

		_, err := svc.performIssueCard(ctx, userRepo, accountRepo, cardRepo, userID, account.AccountNumber)

		assertServiceErrorCode(t, err, ErrCodeForbidden)
	})

	t.Run("card prefix misconfigured", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository(t)
		accountRepo := mocks.NewMockAccountRepository(t)
		cardRepo := mocks.NewMockCardRepository(t)
		svc, _ := newTestCardService(&stubGenerator{
			err: &identifier.ConfigError{Field: "BANK_CARD_PREFIX", Reason: "must be digits"},
		})
		userID := uuid.New()
		account := verifiedAccount(userID, "0101001100000001", "100", models.CurrencyUSD)

		userRepo.On("LockByID", ctx, userID).Return(nil)
		cardRepo.On("CountByUser", ctx, userID).Return(0, nil)
		accountRepo.On("FindByAccountNumber", ctx, account.AccountNumber).Return(account, nil)

		_, err := svc.performIssueCard(ctx, userRepo, accountRepo, cardRepo, userID, account.AccountNumber)

		assertServiceErrorCode(t, err, ErrCodeConfig)
	})
}

func TestCardService_PerformTopUp(t *testing.T) {
	ctx := context.Background()

	newCard := func(userID, accountID uuid.UUID, balance string) *models.VirtualCard {
		return &models.VirtualCard{
			ID:            uuid.New(),
			UserID:        userID,
			BankAccountID: accountID,
			CardNumber:    "4101000000000019",
			Balance:       dec(balance),
			Status:        models.CardStatusActive,
		}
	}

	t.Run("moves funds from the linked account", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		cardRepo := mocks.NewMockCardRepository(t)
		txRepo := mocks.NewMockTransactionRepository(t)
		svc, _ := newTestCardService(&stubGenerator{})
		userID := uuid.New()
		account := verifiedAccount(userID, "0101001100000001", "300.00", models.CurrencyUSD)
		card := newCard(userID, account.ID, "10.00")

		cardRepo.On("FindByIDForUpdate", ctx, card.ID, userID).Return(card, nil)
		accountRepo.On("FindByIDForUpdate", ctx, account.ID).Return(account, nil)
		accountRepo.On("AdjustBalance", ctx, account.ID, decEq("-75")).Return(nil)
		cardRepo.On("AdjustBalance", ctx, card.ID, decEq("75")).Return(nil)
		txRepo.On("Create", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
			return txn.Type == models.TransactionTypeDeposit &&
				*txn.SenderAccountID == account.ID &&
				*txn.ReceiverAccountID == account.ID
		})).Return(nil)

		result, err := svc.performTopUp(ctx, accountRepo, cardRepo, txRepo, userID, card.ID, dec("75"))

		require.NoError(t, err)
		assert.True(t, result.Balance.Equal(dec("85")))
	})

	t.Run("linked account short of funds", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		cardRepo := mocks.NewMockCardRepository(t)
		txRepo := mocks.NewMockTransactionRepository(t)
		svc, _ := newTestCardService(&stubGenerator{})
		userID := uuid.New()
		account := verifiedAccount(userID, "0101001100000001", "30.00", models.CurrencyUSD)
		card := newCard(userID, account.ID, "0")

		cardRepo.On("FindByIDForUpdate", ctx, card.ID, userID).Return(card, nil)
		accountRepo.On("FindByIDForUpdate", ctx, account.ID).Return(account, nil)

		_, err := svc.performTopUp(ctx, accountRepo, cardRepo, txRepo, userID, card.ID, dec("30.01"))

		assertServiceErrorCode(t, err, ErrCodeInsufficientFunds)
		cardRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("card of another user", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		cardRepo := mocks.NewMockCardRepository(t)
		txRepo := mocks.NewMockTransactionRepository(t)
		svc, _ := newTestCardService(&stubGenerator{})
		userID, cardID := uuid.New(), uuid.New()

		cardRepo.On("FindByIDForUpdate", ctx, cardID, userID).Return(nil, models.ErrNotFound)

		_, err := svc.performTopUp(ctx, accountRepo, cardRepo, txRepo, userID, cardID, dec("5"))

		assertServiceErrorCode(t, err, ErrCodeCardNotFound)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc, notifier := newTestCardService(&stubGenerator{})

		_, err := svc.TopUp(ctx, uuid.New(), uuid.New(), dec("0"))

		assertServiceErrorCode(t, err, ErrCodeValidation)
		assert.NotContains(t, notifier.types(), notify.EventCardToppedUp)
	})
}

func TestCardService_PerformDeleteCard(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an empty card", func(t *testing.T) {
		cardRepo := mocks.NewMockCardRepository(t)
		svc, _ := newTestCardService(&stubGenerator{})
		userID := uuid.New()
		card := &models.VirtualCard{ID: uuid.New(), UserID: userID, Balance: dec("0.00")}

		cardRepo.On("FindByIDForUpdate", ctx, card.ID, userID).Return(card, nil)
		cardRepo.On("Delete", ctx, card.ID).Return(nil)

		assert.NoError(t, svc.performDeleteCard(ctx, cardRepo, userID, card.ID))
	})

	t.Run("refuses a card holding funds", func(t *testing.T) {
		cardRepo := mocks.NewMockCardRepository(t)
		svc, _ := newTestCardService(&stubGenerator{})
		userID := uuid.New()
		card := &models.VirtualCard{ID: uuid.New(), UserID: userID, Balance: dec("0.01")}

		cardRepo.On("FindByIDForUpdate", ctx, card.ID, userID).Return(card, nil)

		err := svc.performDeleteCard(ctx, cardRepo, userID, card.ID)

		assertServiceErrorCode(t, err, ErrCodeNonZeroBalance)
		cardRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown card", func(t *testing.T) {
		cardRepo := mocks.NewMockCardRepository(t)
		svc, _ := newTestCardService(&stubGenerator{})
		userID, cardID := uuid.New(), uuid.New()

		cardRepo.On("FindByIDForUpdate", ctx, cardID, userID).Return(nil, models.ErrNotFound)

		err := svc.performDeleteCard(ctx, cardRepo, userID, cardID)

		assertServiceErrorCode(t, err, ErrCodeCardNotFound)
	})
}
