package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/shopspring/decimal"
)

// HealthChecker validates system health.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// NotificationSink receives events after the change they describe is committed
type NotificationSink interface {
	Notify(ctx context.Context, event notify.Event)
}

// ReportRequester queues transaction history documents for rendering
type ReportRequester interface {
	RequestTransactionReport(ctx context.Context, req notify.ReportRequest) error
}

// NumberGenerator produces account and card identifiers
type NumberGenerator interface {
	AccountNumber(currency models.Currency) (string, error)
	CardNumber() (string, error)
	CVV(cardNumber string, expiry time.Time) string
}

// PendingStore keeps workflow state between the steps of a transfer or withdrawal
type PendingStore interface {
	SaveTransfer(ctx context.Context, transfer *models.PendingTransfer) error
	LoadTransfer(ctx context.Context, userID uuid.UUID) (*models.PendingTransfer, error)
	TakeTransfer(ctx context.Context, userID uuid.UUID) (*models.PendingTransfer, error)
	ClearTransfer(ctx context.Context, userID uuid.UUID) error
	SaveOTP(ctx context.Context, userID uuid.UUID, otp *models.PendingOTP) error
	LoadOTP(ctx context.Context, userID uuid.UUID) (*models.PendingOTP, error)
	TakeOTP(ctx context.Context, userID uuid.UUID) (*models.PendingOTP, error)
	SaveWithdrawal(ctx context.Context, withdrawal *models.PendingWithdrawal) error
	TakeWithdrawal(ctx context.Context, userID uuid.UUID) (*models.PendingWithdrawal, error)
}

// AccountManager handles account lifecycle and teller operations
type AccountManager interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, currency models.Currency, accountType models.AccountType) (*models.Account, error)
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*models.Account, error)
	SetPrimary(ctx context.Context, ownerID uuid.UUID, accountNumber string) (*models.Account, error)
	Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.Account, error)
	LookupAccount(ctx context.Context, accountNumber string) (*models.AccountOwner, error)
	VerifyKYC(ctx context.Context, accountID uuid.UUID, update KYCUpdate, staffID uuid.UUID) (*models.Account, error)
}

// Withdrawer debits a verified account
type Withdrawer interface {
	Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal, ownerID uuid.UUID) (*models.Account, *models.Transaction, error)
}

// InterestApplier credits daily interest one account at a time
type InterestApplier interface {
	ListSavingsAccountIDs(ctx context.Context) ([]uuid.UUID, error)
	ApplyDailyInterest(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

// TransactionQuerier reads the journal
type TransactionQuerier interface {
	Query(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter, page int) (*models.TransactionPage, error)
}

// TransferProcessor drives the security question and OTP transfer workflow
type TransferProcessor interface {
	Initiate(ctx context.Context, userID uuid.UUID, req TransferRequest) (*models.PendingTransfer, error)
	VerifySecurityQuestion(ctx context.Context, userID uuid.UUID, answer string) (*models.PendingTransfer, error)
	VerifyOTPAndCommit(ctx context.Context, userID uuid.UUID, otp string) (*models.Transaction, error)
}

// WithdrawalProcessor drives the username confirmed withdrawal workflow
type WithdrawalProcessor interface {
	Initiate(ctx context.Context, userID uuid.UUID, accountNumber string, amount decimal.Decimal) (*models.PendingWithdrawal, error)
	VerifyUsernameAndWithdraw(ctx context.Context, userID uuid.UUID, username string) (*models.Account, *models.Transaction, error)
}

// CardManager handles virtual cards
type CardManager interface {
	IssueCard(ctx context.Context, userID uuid.UUID, bankAccountNumber string) (*models.VirtualCard, error)
	ListCards(ctx context.Context, userID uuid.UUID) ([]*models.VirtualCard, error)
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*models.VirtualCard, error)
	TopUp(ctx context.Context, userID, cardID uuid.UUID, amount decimal.Decimal) (*models.VirtualCard, error)
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

// ActivityDetector scans recent transactions for suspicious patterns
type ActivityDetector interface {
	Detect(ctx context.Context, now time.Time) (int, error)
}

// Ensure concrete types implement interfaces
var (
	_ AccountManager      = (*AccountService)(nil)
	_ Withdrawer          = (*AccountService)(nil)
	_ InterestApplier     = (*AccountService)(nil)
	_ TransactionQuerier  = (*JournalService)(nil)
	_ TransferProcessor   = (*TransferService)(nil)
	_ WithdrawalProcessor = (*WithdrawalService)(nil)
	_ CardManager         = (*CardService)(nil)
	_ ActivityDetector    = (*ActivityService)(nil)
)
