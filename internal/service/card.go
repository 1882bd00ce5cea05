package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/identifier"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
)

const cardValidityYears = 3

// CardService issues and funds virtual cards
type CardService struct {
	db        *db.DB
	generator NumberGenerator
	notifier  NotificationSink
	logger    *slog.Logger
	now       func() time.Time
	maxCards  int
}

// NewCardService creates a new CardService
func NewCardService(
	database *db.DB,
	generator NumberGenerator,
	notifier NotificationSink,
	maxCards int,
	logger *slog.Logger,
) *CardService {
	return &CardService{
		db:        database,
		generator: generator,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		maxCards:  maxCards,
	}
}

// IssueCard creates an active card linked to one of the user's accounts
func (s *CardService) IssueCard(ctx context.Context, userID uuid.UUID, bankAccountNumber string) (*models.VirtualCard, error) {
	var card *models.VirtualCard
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		card, err = s.performIssueCard(ctx,
			repository.NewUserRepository(tx),
			repository.NewAccountRepository(tx),
			repository.NewCardRepository(tx),
			userID, bankAccountNumber,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("virtual card issued",
		"card_id", card.ID,
		"bank_account_id", card.BankAccountID,
	)

	return card, nil
}

func (s *CardService) performIssueCard(
	ctx context.Context,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	cardRepo repository.CardRepository,
	userID uuid.UUID,
	bankAccountNumber string,
) (*models.VirtualCard, error) {
	// serialises concurrent issues so the limit holds
	if err := userRepo.LockByID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrCodeForbidden, "unknown user")
		}
		return nil, internalError("failed to lock user", err)
	}

	count, err := cardRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, internalError("failed to count cards", err)
	}
	if count >= s.maxCards {
		return nil, newError(ErrCodeCardLimitExceeded, "virtual card limit reached")
	}

	account, err := findAccount(ctx, accountRepo, bankAccountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, newError(ErrCodeForbidden, "account does not belong to the caller")
	}

	number, err := s.uniqueCardNumber(ctx, cardRepo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	card := &models.VirtualCard{
		ID:            uuid.New(),
		UserID:        userID,
		BankAccountID: account.ID,
		CardNumber:    number,
		ExpiryDate:    now.AddDate(cardValidityYears, 0, 0),
		Balance:       decimal.Zero,
		Status:        models.CardStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := cardRepo.Create(ctx, card); err != nil {
		return nil, internalError("failed to create card", err)
	}

	card.CVV = s.generator.CVV(card.CardNumber, card.ExpiryDate)
	return card, nil
}

func (s *CardService) uniqueCardNumber(ctx context.Context, cardRepo repository.CardRepository) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := s.generator.CardNumber()
		if err != nil {
			var cfgErr *identifier.ConfigError
			if errors.As(err, &cfgErr) {
				return "", &ServiceError{Code: ErrCodeConfig, Message: "card number configuration is invalid", Err: err}
			}
			return "", internalError("failed to generate card number", err)
		}

		taken, err := cardRepo.ExistsByCardNumber(ctx, number)
		if err != nil {
			return "", internalError("failed to check card number", err)
		}
		if !taken {
			return number, nil
		}
	}

	return "", newError(ErrCodeInternalError, "could not generate an unused card number")
}

// ListCards returns the user's cards with their CVVs
func (s *CardService) ListCards(ctx context.Context, userID uuid.UUID) ([]*models.VirtualCard, error) {
	cards, err := repository.NewCardRepository(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError("failed to list cards", err)
	}

	for _, card := range cards {
		card.CVV = s.generator.CVV(card.CardNumber, card.ExpiryDate)
	}
	return cards, nil
}

// GetCard returns one of the user's cards
func (s *CardService) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*models.VirtualCard, error) {
	card, err := repository.NewCardRepository(s.db).FindByID(ctx, cardID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeCardNotFound, "card not found")
	}
	if err != nil {
		return nil, internalError("failed to load card", err)
	}

	card.CVV = s.generator.CVV(card.CardNumber, card.ExpiryDate)
	return card, nil
}

// TopUp moves funds from the card's linked account onto the card
func (s *CardService) TopUp(ctx context.Context, userID, cardID uuid.UUID, amount decimal.Decimal) (*models.VirtualCard, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, validationError(err)
	}

	var card *models.VirtualCard
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		card, err = s.performTopUp(ctx,
			repository.NewAccountRepository(tx),
			repository.NewCardRepository(tx),
			repository.NewTransactionRepository(tx),
			userID, cardID, amount,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	card.CVV = s.generator.CVV(card.CardNumber, card.ExpiryDate)

	s.logger.Info("virtual card topped up",
		"card_id", card.ID,
		"amount", amount.StringFixed(2),
	)
	s.notifier.Notify(ctx, notify.NewEvent(notify.EventCardToppedUp, &userID, map[string]any{
		"card_id": card.ID,
		"amount":  amount.StringFixed(2),
		"balance": card.Balance.StringFixed(2),
	}))

	return card, nil
}

func (s *CardService) performTopUp(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	cardRepo repository.CardRepository,
	transactionRepo repository.TransactionRepository,
	userID, cardID uuid.UUID,
	amount decimal.Decimal,
) (*models.VirtualCard, error) {
	card, err := cardRepo.FindByIDForUpdate(ctx, cardID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeCardNotFound, "card not found")
	}
	if err != nil {
		return nil, internalError("failed to load card", err)
	}

	account, err := accountRepo.FindByIDForUpdate(ctx, card.BankAccountID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeAccountNotFound, "linked account not found")
	}
	if err != nil {
		return nil, internalError("failed to load linked account", err)
	}

	if account.Balance.LessThan(amount) {
		return nil, newError(ErrCodeInsufficientFunds, "insufficient funds in linked account")
	}

	if err := accountRepo.AdjustBalance(ctx, account.ID, amount.Neg()); err != nil {
		return nil, internalError("failed to debit linked account", err)
	}
	if err := cardRepo.AdjustBalance(ctx, card.ID, amount); err != nil {
		return nil, internalError("failed to credit card", err)
	}
	card.Balance = card.Balance.Add(amount)

	if _, err := recordEntry(ctx, transactionRepo, Entry{
		Type:            models.TransactionTypeDeposit,
		Amount:          amount,
		SenderID:        &account.UserID,
		ReceiverID:      &account.UserID,
		SenderAccount:   account,
		ReceiverAccount: account,
		Description:     "Virtual card top-up",
	}); err != nil {
		return nil, err
	}

	return card, nil
}

// DeleteCard removes an empty card
func (s *CardService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.performDeleteCard(ctx, repository.NewCardRepository(tx), userID, cardID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("virtual card deleted", "card_id", cardID)
	return nil
}

func (s *CardService) performDeleteCard(ctx context.Context, cardRepo repository.CardRepository, userID, cardID uuid.UUID) error {
	card, err := cardRepo.FindByIDForUpdate(ctx, cardID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return newError(ErrCodeCardNotFound, "card not found")
	}
	if err != nil {
		return internalError("failed to load card", err)
	}

	if card.Balance.IsPositive() {
		return newError(ErrCodeNonZeroBalance, "card balance must be zero before deletion")
	}

	if err := cardRepo.Delete(ctx, card.ID); err != nil {
		return internalError("failed to delete card", err)
	}
	return nil
}
