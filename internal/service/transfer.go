package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/retailbank/ledger/internal/pending"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const otpDigits = 6

// TransferRequest is the first step of a transfer
type TransferRequest struct {
	SenderAccountNumber   string
	ReceiverAccountNumber string
	Description           string
	Amount                decimal.Decimal
}

// TransferService moves funds between accounts after the sender answers their
// security question and confirms a one-time password
type TransferService struct {
	db         *db.DB
	workflows  PendingStore
	notifier   NotificationSink
	logger     *slog.Logger
	now        func() time.Time
	newOTP     func() (string, error)
	pendingTTL time.Duration
	otpTTL     time.Duration
	hashCost   int
}

// NewTransferService creates a new TransferService
func NewTransferService(
	database *db.DB,
	workflows PendingStore,
	notifier NotificationSink,
	pendingTTL, otpTTL time.Duration,
	logger *slog.Logger,
) *TransferService {
	return &TransferService{
		db:         database,
		workflows:  workflows,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
		newOTP:     generateOTP,
		pendingTTL: pendingTTL,
		otpTTL:     otpTTL,
		hashCost:   bcrypt.DefaultCost,
	}
}

// generateOTP returns a zero padded six digit code from crypto/rand
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// Initiate validates the transfer and stores it pending the security question.
// A new transfer replaces any earlier pending one for the user.
func (s *TransferService) Initiate(ctx context.Context, userID uuid.UUID, req TransferRequest) (*models.PendingTransfer, error) {
	return s.performInitiate(ctx, repository.NewAccountRepository(s.db), userID, req)
}

func (s *TransferService) performInitiate(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	userID uuid.UUID,
	req TransferRequest,
) (*models.PendingTransfer, error) {
	if err := ValidateAmount(req.Amount); err != nil {
		return nil, validationError(err)
	}

	sender, err := findAccount(ctx, accountRepo, req.SenderAccountNumber)
	if err != nil {
		return nil, err
	}
	if sender.UserID != userID {
		return nil, newError(ErrCodeForbidden, "sender account does not belong to the caller")
	}
	if !sender.IsVerified() {
		return nil, newError(ErrCodeAccountNotVerified, "sender account must be KYC verified and fully activated")
	}

	receiver, err := findAccount(ctx, accountRepo, req.ReceiverAccountNumber)
	if err != nil {
		return nil, err
	}
	if receiver.ID == sender.ID {
		return nil, newError(ErrCodeSameAccount, "cannot transfer to the same account")
	}

	transfer := &models.PendingTransfer{
		Token:                 uuid.New(),
		UserID:                userID,
		SenderAccountNumber:   sender.AccountNumber,
		ReceiverAccountNumber: receiver.AccountNumber,
		Amount:                req.Amount,
		Description:           req.Description,
		Stage:                 models.TransferStageInitiated,
		ExpiresAt:             s.now().Add(s.pendingTTL),
	}

	if err := s.workflows.ClearTransfer(ctx, userID); err != nil {
		return nil, internalError("failed to clear previous transfer", err)
	}
	if err := s.workflows.SaveTransfer(ctx, transfer); err != nil {
		return nil, internalError("failed to store pending transfer", err)
	}

	s.logger.Info("transfer initiated",
		"token", transfer.Token,
		"sender_account", transfer.SenderAccountNumber,
		"receiver_account", transfer.ReceiverAccountNumber,
		"amount", transfer.Amount.StringFixed(2),
	)

	return transfer, nil
}

// VerifySecurityQuestion checks the answer and sends the user an OTP
func (s *TransferService) VerifySecurityQuestion(ctx context.Context, userID uuid.UUID, answer string) (*models.PendingTransfer, error) {
	return s.performVerifySecurityQuestion(ctx, repository.NewUserRepository(s.db), userID, answer)
}

func (s *TransferService) performVerifySecurityQuestion(
	ctx context.Context,
	userRepo repository.UserRepository,
	userID uuid.UUID,
	answer string,
) (*models.PendingTransfer, error) {
	transfer, err := s.workflows.LoadTransfer(ctx, userID)
	if errors.Is(err, pending.ErrNotFound) {
		return nil, newError(ErrCodeNoPendingTransfer, "no pending transfer")
	}
	if err != nil {
		return nil, internalError("failed to load pending transfer", err)
	}
	// answering again from SECURITY_VERIFIED replaces the OTP, so an expired
	// code does not force a new transfer while the transfer itself is alive
	if transfer.Stage != models.TransferStageInitiated && transfer.Stage != models.TransferStageSecurityVerified {
		return nil, newError(ErrCodeNoPendingTransfer, "no transfer awaiting the security question")
	}

	user, err := userRepo.FindByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeForbidden, "unknown user")
	}
	if err != nil {
		return nil, internalError("failed to load user", err)
	}

	if user.SecurityAnswerHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.SecurityAnswerHash), []byte(NormalizeSecurityAnswer(answer))) != nil {
		return nil, newError(ErrCodeSecurityAnswerMismatch, "incorrect security answer")
	}

	otp, err := s.newOTP()
	if err != nil {
		return nil, internalError("failed to generate otp", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), s.hashCost)
	if err != nil {
		return nil, internalError("failed to hash otp", err)
	}

	expiresAt := s.now().Add(s.otpTTL)
	if err := s.workflows.SaveOTP(ctx, userID, &models.PendingOTP{Hash: string(hash), ExpiresAt: expiresAt}); err != nil {
		return nil, internalError("failed to store otp", err)
	}

	transfer.Stage = models.TransferStageSecurityVerified
	if err := s.workflows.SaveTransfer(ctx, transfer); err != nil {
		return nil, internalError("failed to store pending transfer", err)
	}

	s.notifier.Notify(ctx, notify.NewEvent(notify.EventTransferOTP, &userID, map[string]any{
		"email":      user.Email,
		"otp":        otp,
		"expires_at": expiresAt,
	}))

	return transfer, nil
}

// VerifyOTPAndCommit consumes the OTP and the pending transfer, then moves the
// funds atomically. Both are single use even when the commit fails.
func (s *TransferService) VerifyOTPAndCommit(ctx context.Context, userID uuid.UUID, otp string) (*models.Transaction, error) {
	transfer, err := s.consume(ctx, userID, otp)
	if err != nil {
		return nil, err
	}

	var result *transferResult
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		result, err = s.performCommit(ctx,
			repository.NewAccountRepository(tx),
			repository.NewTransactionRepository(tx),
			transfer,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		"transaction_id", result.txn.ID,
		"sender_account", result.sender.AccountNumber,
		"receiver_account", result.receiver.AccountNumber,
		"amount", transfer.Amount.StringFixed(2),
	)
	s.notifyCommitted(ctx, result, transfer)

	return result.txn, nil
}

func (s *TransferService) consume(ctx context.Context, userID uuid.UUID, otp string) (*models.PendingTransfer, error) {
	transfer, err := s.workflows.LoadTransfer(ctx, userID)
	if errors.Is(err, pending.ErrNotFound) {
		return nil, newError(ErrCodeNoPendingTransfer, "no pending transfer")
	}
	if err != nil {
		return nil, internalError("failed to load pending transfer", err)
	}
	if transfer.Stage != models.TransferStageSecurityVerified {
		return nil, newError(ErrCodeNoPendingTransfer, "security question has not been answered")
	}

	stored, err := s.workflows.LoadOTP(ctx, userID)
	if errors.Is(err, pending.ErrNotFound) {
		return nil, newError(ErrCodeOTPInvalidOrExpired, "otp is invalid or expired")
	}
	if err != nil {
		return nil, internalError("failed to load otp", err)
	}
	if !s.now().Before(stored.ExpiresAt) ||
		bcrypt.CompareHashAndPassword([]byte(stored.Hash), []byte(otp)) != nil {
		return nil, newError(ErrCodeOTPInvalidOrExpired, "otp is invalid or expired")
	}

	if _, err := s.workflows.TakeOTP(ctx, userID); err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			return nil, newError(ErrCodeOTPInvalidOrExpired, "otp is invalid or expired")
		}
		return nil, internalError("failed to consume otp", err)
	}

	taken, err := s.workflows.TakeTransfer(ctx, userID)
	if errors.Is(err, pending.ErrNotFound) || (err == nil && taken.Token != transfer.Token) {
		return nil, newError(ErrCodeNoPendingTransfer, "no pending transfer")
	}
	if err != nil {
		return nil, internalError("failed to consume pending transfer", err)
	}
	if !s.now().Before(taken.ExpiresAt) {
		return nil, newError(ErrCodeNoPendingTransfer, "pending transfer has expired")
	}

	return taken, nil
}

type transferResult struct {
	txn      *models.Transaction
	sender   *models.Account
	receiver *models.Account
}

// performCommit locks both accounts in account number order, checks every
// rule, then debits, credits and records one TRANSFER entry
func (s *TransferService) performCommit(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	transfer *models.PendingTransfer,
) (*transferResult, error) {
	first, second := transfer.SenderAccountNumber, transfer.ReceiverAccountNumber
	if second < first {
		first, second = second, first
	}

	locked := make(map[string]*models.Account, 2)
	for _, number := range []string{first, second} {
		if _, ok := locked[number]; ok {
			continue
		}
		account, err := findAccountForUpdate(ctx, accountRepo, number)
		if err != nil {
			return nil, err
		}
		locked[number] = account
	}

	sender := locked[transfer.SenderAccountNumber]
	receiver := locked[transfer.ReceiverAccountNumber]

	if sender.UserID != transfer.UserID {
		return nil, newError(ErrCodeForbidden, "sender account does not belong to the caller")
	}

	entry := Entry{
		Type:            models.TransactionTypeTransfer,
		Amount:          transfer.Amount,
		SenderID:        &sender.UserID,
		ReceiverID:      &receiver.UserID,
		SenderAccount:   sender,
		ReceiverAccount: receiver,
		Description:     transfer.Description,
	}
	if err := entry.validate(); err != nil {
		return nil, err
	}

	if sender.Balance.LessThan(transfer.Amount) {
		return nil, newError(ErrCodeInsufficientFunds, "insufficient funds")
	}

	if err := accountRepo.AdjustBalance(ctx, sender.ID, transfer.Amount.Neg()); err != nil {
		return nil, internalError("failed to debit sender", err)
	}
	if err := accountRepo.AdjustBalance(ctx, receiver.ID, transfer.Amount); err != nil {
		return nil, internalError("failed to credit receiver", err)
	}
	sender.Balance = sender.Balance.Sub(transfer.Amount)
	receiver.Balance = receiver.Balance.Add(transfer.Amount)

	txn, err := recordEntry(ctx, transactionRepo, entry)
	if err != nil {
		return nil, err
	}

	return &transferResult{txn: txn, sender: sender, receiver: receiver}, nil
}

func (s *TransferService) notifyCommitted(ctx context.Context, result *transferResult, transfer *models.PendingTransfer) {
	amount := transfer.Amount.StringFixed(2)

	s.notifier.Notify(ctx, notify.NewEvent(notify.EventTransferSent, &result.sender.UserID, map[string]any{
		"transaction_id":   result.txn.ID,
		"account_number":   result.sender.AccountNumber,
		"receiver_account": result.receiver.AccountNumber,
		"amount":           amount,
		"currency":         result.sender.Currency,
		"balance":          result.sender.Balance.StringFixed(2),
	}))
	s.notifier.Notify(ctx, notify.NewEvent(notify.EventTransferReceived, &result.receiver.UserID, map[string]any{
		"transaction_id": result.txn.ID,
		"account_number": result.receiver.AccountNumber,
		"sender_account": result.sender.AccountNumber,
		"amount":         amount,
		"currency":       result.receiver.Currency,
		"balance":        result.receiver.Balance.StringFixed(2),
	}))
}

func findAccount(ctx context.Context, accountRepo repository.AccountRepository, accountNumber string) (*models.Account, error) {
	account, err := accountRepo.FindByAccountNumber(ctx, accountNumber)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, internalError("failed to load account", err)
	}
	return account, nil
}
