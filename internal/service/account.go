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

// maxNumberAttempts bounds the retries when a generated number is already taken
const maxNumberAttempts = 20

// KYCUpdate carries the verification fields staff may change. Nil fields keep the stored value.
type KYCUpdate struct {
	KYCSubmitted      *bool
	KYCVerified       *bool
	VerificationDate  *time.Time
	VerificationNotes *string
}

// AccountService owns bank account state
type AccountService struct {
	db        *db.DB
	generator NumberGenerator
	notifier  NotificationSink
	logger    *slog.Logger
	now       func() time.Time
}

// NewAccountService creates a new AccountService
func NewAccountService(database *db.DB, generator NumberGenerator, notifier NotificationSink, logger *slog.Logger) *AccountService {
	return &AccountService{
		db:        database,
		generator: generator,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateAccount opens an account for the user. The first account becomes primary.
func (s *AccountService) CreateAccount(
	ctx context.Context,
	userID uuid.UUID,
	currency models.Currency,
	accountType models.AccountType,
) (*models.Account, error) {
	if !currency.Valid() {
		return nil, newError(ErrCodeValidation, "currency must be one of USD, GBP, KES")
	}
	if !accountType.Valid() {
		return nil, newError(ErrCodeValidation, "account type must be CURRENT or SAVINGS")
	}

	var account *models.Account
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		account, err = s.performCreateAccount(ctx,
			repository.NewUserRepository(tx),
			repository.NewAccountRepository(tx),
			userID, currency, accountType,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		"account_number", account.AccountNumber,
		"currency", account.Currency,
		"account_type", account.AccountType,
		"is_primary", account.IsPrimary,
	)
	s.notifier.Notify(ctx, notify.NewEvent(notify.EventAccountCreated, &account.UserID, map[string]any{
		"account_number": account.AccountNumber,
		"currency":       account.Currency,
		"account_type":   account.AccountType,
	}))

	return account, nil
}

func (s *AccountService) performCreateAccount(
	ctx context.Context,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	userID uuid.UUID,
	currency models.Currency,
	accountType models.AccountType,
) (*models.Account, error) {
	if err := userRepo.LockByID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrCodeForbidden, "unknown user")
		}
		return nil, internalError("failed to lock user", err)
	}

	existing, err := accountRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, internalError("failed to count accounts", err)
	}

	number, err := s.uniqueAccountNumber(ctx, accountRepo, currency)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: number,
		Balance:       decimal.Zero,
		Currency:      currency,
		AccountType:   accountType,
		Status:        models.AccountStatusInactive,
		IsPrimary:     existing == 0,
		InterestRate:  models.ComputeAnnualInterestRate(accountType, decimal.Zero),
	}

	if err := accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, models.ErrDuplicateAccount) {
			return nil, newError(ErrCodeDuplicateAccount,
				"an account with this currency and type already exists")
		}
		return nil, internalError("failed to create account", err)
	}

	return account, nil
}

func (s *AccountService) uniqueAccountNumber(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	currency models.Currency,
) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := s.generator.AccountNumber(currency)
		if err != nil {
			var cfgErr *identifier.ConfigError
			if errors.As(err, &cfgErr) {
				return "", &ServiceError{Code: ErrCodeConfig, Message: "account number configuration is invalid", Err: err}
			}
			return "", internalError("failed to generate account number", err)
		}

		taken, err := accountRepo.ExistsByAccountNumber(ctx, number)
		if err != nil {
			return "", internalError("failed to check account number", err)
		}
		if !taken {
			return number, nil
		}
	}

	return "", newError(ErrCodeInternalError, "could not generate an unused account number")
}

// ListAccounts returns the owner's accounts with their current interest rate
func (s *AccountService) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*models.Account, error) {
	accounts, err := repository.NewAccountRepository(s.db).ListByUser(ctx, ownerID)
	if err != nil {
		return nil, internalError("failed to list accounts", err)
	}

	for _, account := range accounts {
		account.InterestRate = models.ComputeAnnualInterestRate(account.AccountType, account.Balance)
	}
	return accounts, nil
}

// SetPrimary makes the account the owner's only primary account
func (s *AccountService) SetPrimary(ctx context.Context, ownerID uuid.UUID, accountNumber string) (*models.Account, error) {
	var account *models.Account
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		account, err = s.performSetPrimary(ctx,
			repository.NewUserRepository(tx),
			repository.NewAccountRepository(tx),
			ownerID, accountNumber,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AccountService) performSetPrimary(
	ctx context.Context,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	ownerID uuid.UUID,
	accountNumber string,
) (*models.Account, error) {
	if err := userRepo.LockByID(ctx, ownerID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrCodeForbidden, "unknown user")
		}
		return nil, internalError("failed to lock user", err)
	}

	account, err := findAccountForUpdate(ctx, accountRepo, accountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != ownerID {
		return nil, newError(ErrCodeForbidden, "account does not belong to the caller")
	}

	if err := accountRepo.ClearPrimary(ctx, ownerID, account.ID); err != nil {
		return nil, internalError("failed to clear primary accounts", err)
	}
	if err := accountRepo.MarkPrimary(ctx, account.ID); err != nil {
		return nil, internalError("failed to mark primary account", err)
	}

	account.IsPrimary = true
	return account, nil
}

// Deposit credits an account and records the deposit in the journal
func (s *AccountService) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.Account, error) {
	if err := ValidateDepositAmount(amount); err != nil {
		return nil, validationError(err)
	}

	var (
		account *models.Account
		txn     *models.Transaction
	)
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		account, txn, err = s.performDeposit(ctx,
			repository.NewAccountRepository(tx),
			repository.NewTransactionRepository(tx),
			accountNumber, amount,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit completed",
		"account_number", account.AccountNumber,
		"amount", amount.StringFixed(2),
		"transaction_id", txn.ID,
	)
	s.notifier.Notify(ctx, notify.NewEvent(notify.EventDepositConfirmed, &account.UserID, map[string]any{
		"account_number": account.AccountNumber,
		"amount":         amount.StringFixed(2),
		"currency":       account.Currency,
		"balance":        account.Balance.StringFixed(2),
		"transaction_id": txn.ID,
	}))

	return account, nil
}

func (s *AccountService) performDeposit(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	accountNumber string,
	amount decimal.Decimal,
) (*models.Account, *models.Transaction, error) {
	account, err := findAccountForUpdate(ctx, accountRepo, accountNumber)
	if err != nil {
		return nil, nil, err
	}

	if err := accountRepo.AdjustBalance(ctx, account.ID, amount); err != nil {
		return nil, nil, internalError("failed to credit account", err)
	}
	account.Balance = account.Balance.Add(amount)

	txn, err := recordEntry(ctx, transactionRepo, Entry{
		Type:            models.TransactionTypeDeposit,
		Amount:          amount,
		ReceiverID:      &account.UserID,
		ReceiverAccount: account,
		Description:     "Deposit",
	})
	if err != nil {
		return nil, nil, err
	}

	return account, txn, nil
}

// Withdraw debits a verified account owned by ownerID
func (s *AccountService) Withdraw(
	ctx context.Context,
	accountNumber string,
	amount decimal.Decimal,
	ownerID uuid.UUID,
) (*models.Account, *models.Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, nil, validationError(err)
	}

	var (
		account *models.Account
		txn     *models.Transaction
	)
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		account, txn, err = s.performWithdraw(ctx,
			repository.NewAccountRepository(tx),
			repository.NewTransactionRepository(tx),
			accountNumber, amount, ownerID,
		)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("withdrawal completed",
		"account_number", account.AccountNumber,
		"amount", amount.StringFixed(2),
		"transaction_id", txn.ID,
	)
	s.notifier.Notify(ctx, notify.NewEvent(notify.EventWithdrawalConfirmed, &account.UserID, map[string]any{
		"account_number": account.AccountNumber,
		"amount":         amount.StringFixed(2),
		"currency":       account.Currency,
		"balance":        account.Balance.StringFixed(2),
		"transaction_id": txn.ID,
	}))

	return account, txn, nil
}

func (s *AccountService) performWithdraw(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	accountNumber string,
	amount decimal.Decimal,
	ownerID uuid.UUID,
) (*models.Account, *models.Transaction, error) {
	account, err := findAccountForUpdate(ctx, accountRepo, accountNumber)
	if err != nil {
		return nil, nil, err
	}

	if account.UserID != ownerID {
		return nil, nil, newError(ErrCodeForbidden, "account does not belong to the caller")
	}
	if !account.IsVerified() {
		return nil, nil, newError(ErrCodeAccountNotVerified, "account must be KYC verified and fully activated")
	}
	if account.Balance.LessThan(amount) {
		return nil, nil, newError(ErrCodeInsufficientFunds, "insufficient funds")
	}

	if err := accountRepo.AdjustBalance(ctx, account.ID, amount.Neg()); err != nil {
		return nil, nil, internalError("failed to debit account", err)
	}
	account.Balance = account.Balance.Sub(amount)

	txn, err := recordEntry(ctx, transactionRepo, Entry{
		Type:          models.TransactionTypeWithdrawal,
		Amount:        amount,
		SenderID:      &account.UserID,
		SenderAccount: account,
		Description:   "Withdrawal",
	})
	if err != nil {
		return nil, nil, err
	}

	return account, txn, nil
}

// ListSavingsAccountIDs returns every savings account id for the interest batch
func (s *AccountService) ListSavingsAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := repository.NewAccountRepository(s.db).ListSavingsIDs(ctx)
	if err != nil {
		return nil, internalError("failed to list savings accounts", err)
	}
	return ids, nil
}

// ApplyDailyInterest credits one day of interest to a savings account in its
// own transaction and returns the amount credited
func (s *AccountService) ApplyDailyInterest(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var interest decimal.Decimal
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		interest, err = s.performApplyInterest(ctx,
			repository.NewAccountRepository(tx),
			repository.NewTransactionRepository(tx),
			accountID,
		)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return interest, nil
}

func (s *AccountService) performApplyInterest(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	accountID uuid.UUID,
) (decimal.Decimal, error) {
	account, err := accountRepo.FindByIDForUpdate(ctx, accountID)
	if errors.Is(err, models.ErrNotFound) {
		return decimal.Zero, newError(ErrCodeAccountNotFound, "account not found")
	}
	if err != nil {
		return decimal.Zero, internalError("failed to load account", err)
	}

	if account.AccountType != models.AccountTypeSavings {
		return decimal.Zero, nil
	}

	rate := models.ComputeAnnualInterestRate(account.AccountType, account.Balance)
	interest := models.ComputeDailyInterest(account.AccountType, account.Balance)
	if !interest.IsPositive() {
		return decimal.Zero, nil
	}

	if err := accountRepo.AdjustBalance(ctx, account.ID, interest); err != nil {
		return decimal.Zero, internalError("failed to credit interest", err)
	}
	if err := accountRepo.UpdateInterestRate(ctx, account.ID, rate); err != nil {
		return decimal.Zero, internalError("failed to store interest rate", err)
	}

	if _, err := recordEntry(ctx, transactionRepo, Entry{
		Type:            models.TransactionTypeInterest,
		Amount:          interest,
		ReceiverID:      &account.UserID,
		ReceiverAccount: account,
		Description:     "Daily interest",
	}); err != nil {
		return decimal.Zero, err
	}

	return interest, nil
}

// VerifyKYC records staff review of an account. Submission must precede
// verification; a submitted and verified account becomes fully activated.
func (s *AccountService) VerifyKYC(
	ctx context.Context,
	accountID uuid.UUID,
	update KYCUpdate,
	staffID uuid.UUID,
) (*models.Account, error) {
	var (
		account   *models.Account
		activated bool
	)
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		account, activated, err = s.performVerifyKYC(ctx,
			repository.NewAccountRepository(tx),
			accountID, update, staffID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	if activated {
		s.logger.Info("account fully activated",
			"account_number", account.AccountNumber,
			"verified_by", staffID,
		)
		s.notifier.Notify(ctx, notify.NewEvent(notify.EventAccountActivated, &account.UserID, map[string]any{
			"account_number": account.AccountNumber,
			"verified_at":    account.VerificationDate,
		}))
	}

	return account, nil
}

func (s *AccountService) performVerifyKYC(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	accountID uuid.UUID,
	update KYCUpdate,
	staffID uuid.UUID,
) (*models.Account, bool, error) {
	account, err := accountRepo.FindByIDForUpdate(ctx, accountID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, false, newError(ErrCodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, false, internalError("failed to load account", err)
	}

	if account.KYCVerified && account.FullyActivated {
		return nil, false, newError(ErrCodeAlreadyVerified, "account is already verified")
	}

	submitted := account.KYCSubmitted
	if update.KYCSubmitted != nil {
		submitted = *update.KYCSubmitted
	}
	verified := account.KYCVerified
	if update.KYCVerified != nil {
		verified = *update.KYCVerified
	}

	if verified && !submitted {
		return nil, false, newError(ErrCodeKYCSequence, "KYC must be submitted before it can be verified")
	}

	if update.KYCVerified != nil && *update.KYCVerified {
		if update.VerificationDate == nil {
			return nil, false, newError(ErrCodeValidation, "verification_date is required when verifying")
		}
		if update.VerificationNotes == nil || *update.VerificationNotes == "" {
			return nil, false, newError(ErrCodeValidation, "verification_notes are required when verifying")
		}
	}

	account.KYCSubmitted = submitted
	activated := false

	if submitted && verified {
		verifiedAt := s.now()
		if update.VerificationDate != nil {
			verifiedAt = *update.VerificationDate
		}
		account.KYCVerified = true
		account.VerificationDate = &verifiedAt
		if update.VerificationNotes != nil {
			account.VerificationNotes = *update.VerificationNotes
		}
		account.VerifiedBy = &staffID
		account.FullyActivated = true
		account.Status = models.AccountStatusActive
		activated = true
	}

	if err := accountRepo.UpdateVerification(ctx, account); err != nil {
		return nil, false, internalError("failed to update verification", err)
	}

	return account, activated, nil
}

// LookupAccount returns an account with its holder for the teller deposit screen
func (s *AccountService) LookupAccount(ctx context.Context, accountNumber string) (*models.AccountOwner, error) {
	owner, err := repository.NewAccountRepository(s.db).FindWithOwner(ctx, accountNumber)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, internalError("failed to look up account", err)
	}

	return owner, nil
}

func findAccountForUpdate(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	accountNumber string,
) (*models.Account, error) {
	account, err := accountRepo.FindByAccountNumberForUpdate(ctx, accountNumber)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, internalError("failed to load account", err)
	}
	return account, nil
}
