package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/pending"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
)

// WithdrawalService holds a withdrawal until the user confirms their username
type WithdrawalService struct {
	db         *db.DB
	withdrawer Withdrawer
	workflows  PendingStore
	logger     *slog.Logger
	now        func() time.Time
	pendingTTL time.Duration
}

// NewWithdrawalService creates a new WithdrawalService
func NewWithdrawalService(
	database *db.DB,
	withdrawer Withdrawer,
	workflows PendingStore,
	pendingTTL time.Duration,
	logger *slog.Logger,
) *WithdrawalService {
	return &WithdrawalService{
		db:         database,
		withdrawer: withdrawer,
		workflows:  workflows,
		logger:     logger,
		now:        time.Now,
		pendingTTL: pendingTTL,
	}
}

// Initiate checks the account can cover the amount and stores the withdrawal
func (s *WithdrawalService) Initiate(
	ctx context.Context,
	userID uuid.UUID,
	accountNumber string,
	amount decimal.Decimal,
) (*models.PendingWithdrawal, error) {
	return s.performInitiate(ctx, repository.NewAccountRepository(s.db), userID, accountNumber, amount)
}

func (s *WithdrawalService) performInitiate(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	userID uuid.UUID,
	accountNumber string,
	amount decimal.Decimal,
) (*models.PendingWithdrawal, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, validationError(err)
	}

	account, err := findAccount(ctx, accountRepo, accountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, newError(ErrCodeForbidden, "account does not belong to the caller")
	}
	if !account.IsVerified() {
		return nil, newError(ErrCodeAccountNotVerified, "account must be KYC verified and fully activated")
	}
	if account.Balance.LessThan(amount) {
		return nil, newError(ErrCodeInsufficientFunds, "insufficient funds")
	}

	withdrawal := &models.PendingWithdrawal{
		Token:         uuid.New(),
		UserID:        userID,
		AccountNumber: account.AccountNumber,
		Amount:        amount,
		ExpiresAt:     s.now().Add(s.pendingTTL),
	}
	if err := s.workflows.SaveWithdrawal(ctx, withdrawal); err != nil {
		return nil, internalError("failed to store pending withdrawal", err)
	}

	s.logger.Info("withdrawal initiated",
		"token", withdrawal.Token,
		"account_number", withdrawal.AccountNumber,
		"amount", amount.StringFixed(2),
	)

	return withdrawal, nil
}

// VerifyUsernameAndWithdraw consumes the pending withdrawal once the username
// matches and debits the account. A wrong username leaves it pending.
func (s *WithdrawalService) VerifyUsernameAndWithdraw(
	ctx context.Context,
	userID uuid.UUID,
	username string,
) (*models.Account, *models.Transaction, error) {
	return s.performVerifyUsername(ctx, repository.NewUserRepository(s.db), userID, username)
}

func (s *WithdrawalService) performVerifyUsername(
	ctx context.Context,
	userRepo repository.UserRepository,
	userID uuid.UUID,
	username string,
) (*models.Account, *models.Transaction, error) {
	user, err := userRepo.FindByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, newError(ErrCodeForbidden, "unknown user")
	}
	if err != nil {
		return nil, nil, internalError("failed to load user", err)
	}
	if user.Username != username {
		return nil, nil, newError(ErrCodeUsernameMismatch, "username does not match")
	}

	withdrawal, err := s.workflows.TakeWithdrawal(ctx, userID)
	if errors.Is(err, pending.ErrNotFound) {
		return nil, nil, newError(ErrCodeNoPendingWithdrawal, "no pending withdrawal")
	}
	if err != nil {
		return nil, nil, internalError("failed to consume pending withdrawal", err)
	}
	if !s.now().Before(withdrawal.ExpiresAt) {
		return nil, nil, newError(ErrCodeNoPendingWithdrawal, "pending withdrawal has expired")
	}

	return s.withdrawer.Withdraw(ctx, withdrawal.AccountNumber, withdrawal.Amount, userID)
}
