package api

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// ErrorCode is the machine readable error in every failure body
type ErrorCode string

const (
	ErrorCodeValidation             ErrorCode = "validation_error"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeForbidden              ErrorCode = "forbidden"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeAccountNotFound        ErrorCode = "account_not_found"
	ErrorCodeCardNotFound           ErrorCode = "card_not_found"
	ErrorCodeAccountNotVerified     ErrorCode = "account_not_verified"
	ErrorCodeInsufficientFunds      ErrorCode = "insufficient_funds"
	ErrorCodeCurrencyMismatch       ErrorCode = "currency_mismatch"
	ErrorCodeSameAccount            ErrorCode = "same_account"
	ErrorCodeDuplicateAccount       ErrorCode = "duplicate_account"
	ErrorCodeCardLimitExceeded      ErrorCode = "card_limit_exceeded"
	ErrorCodeNonZeroBalance         ErrorCode = "non_zero_balance"
	ErrorCodeSecurityAnswerMismatch ErrorCode = "security_answer_mismatch"
	ErrorCodeOTPInvalidOrExpired    ErrorCode = "otp_invalid_or_expired"
	ErrorCodeNoPendingTransfer      ErrorCode = "no_pending_transfer"
	ErrorCodeNoPendingWithdrawal    ErrorCode = "no_pending_withdrawal"
	ErrorCodeUsernameMismatch       ErrorCode = "username_mismatch"
	ErrorCodeAlreadyVerified        ErrorCode = "already_verified"
	ErrorCodeKYCSequence            ErrorCode = "kyc_sequence"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// Error is the body of every non-2xx response
type Error struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
}

// HealthStatus reports whether the service can reach its database
type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Unhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status HealthStatus `json:"status"`
}

type CreateAccountRequest struct {
	Currency    string `json:"currency"`
	AccountType string `json:"account_type"`
}

type Account struct {
	VerificationDate *time.Time `json:"verification_date"`
	CreatedAt        time.Time  `json:"created_at"`
	AccountNumber    string     `json:"account_number"`
	Balance          string     `json:"balance"`
	Currency         string     `json:"currency"`
	AccountType      string     `json:"account_type"`
	Status           string     `json:"status"`
	InterestRate     string     `json:"interest_rate"`
	ID               uuid.UUID  `json:"id"`
	IsPrimary        bool       `json:"is_primary"`
	KYCSubmitted     bool       `json:"kyc_submitted"`
	KYCVerified      bool       `json:"kyc_verified"`
	FullyActivated   bool       `json:"fully_activated"`
}

type AccountLookup struct {
	AccountNumber string `json:"account_number"`
	FullName      string `json:"full_name"`
	Username      string `json:"username"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
}

type VerificationRequest struct {
	KYCSubmitted      *bool               `json:"kyc_submitted,omitempty"`
	KYCVerified       *bool               `json:"kyc_verified,omitempty"`
	VerificationDate  *openapi_types.Date `json:"verification_date,omitempty"`
	VerificationNotes *string             `json:"verification_notes,omitempty"`
}

type DepositRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
}

type WithdrawalRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
}

type ConfirmWithdrawalRequest struct {
	Username string `json:"username"`
}

type PendingWithdrawal struct {
	ExpiresAt     time.Time `json:"expires_at"`
	AccountNumber string    `json:"account_number"`
	Amount        string    `json:"amount"`
	Token         uuid.UUID `json:"token"`
}

type MovementResult struct {
	Transaction Transaction `json:"transaction"`
	Balance     string      `json:"balance"`
}

type TransferRequest struct {
	SenderAccountNumber   string          `json:"sender_account_number"`
	ReceiverAccountNumber string          `json:"receiver_account_number"`
	Description           string          `json:"description"`
	Amount                decimal.Decimal `json:"amount"`
}

type SecurityAnswerRequest struct {
	Answer string `json:"answer"`
}

type OTPRequest struct {
	OTP string `json:"otp"`
}

type PendingTransfer struct {
	ExpiresAt             time.Time `json:"expires_at"`
	Stage                 string    `json:"stage"`
	SenderAccountNumber   string    `json:"sender_account_number"`
	ReceiverAccountNumber string    `json:"receiver_account_number"`
	Amount                string    `json:"amount"`
	Description           string    `json:"description,omitempty"`
	Token                 uuid.UUID `json:"token"`
}

type Transaction struct {
	CreatedAt         time.Time  `json:"created_at"`
	SenderAccountID   *uuid.UUID `json:"sender_account_id"`
	ReceiverAccountID *uuid.UUID `json:"receiver_account_id"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	Amount            string     `json:"amount"`
	Description       string     `json:"description"`
	ID                uuid.UUID  `json:"id"`
}

type TransactionPage struct {
	Items      []Transaction `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int           `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// ListTransactionsParams are the query parameters of GET /api/v1/transactions
type ListTransactionsParams struct {
	StartDate     *openapi_types.Date
	EndDate       *openapi_types.Date
	AccountNumber *string
	Page          *int
}

type ReportRequest struct {
	StartDate     *openapi_types.Date `json:"start_date,omitempty"`
	EndDate       *openapi_types.Date `json:"end_date,omitempty"`
	AccountNumber string              `json:"account_number,omitempty"`
}

type ReportAccepted struct {
	Status string    `json:"status"`
	ID     uuid.UUID `json:"id"`
}

type IssueCardRequest struct {
	BankAccountNumber string `json:"bank_account_number"`
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type VirtualCard struct {
	CreatedAt     time.Time          `json:"created_at"`
	ExpiryDate    openapi_types.Date `json:"expiry_date"`
	CardNumber    string             `json:"card_number"`
	CVV           string             `json:"cvv"`
	Balance       string             `json:"balance"`
	Status        string             `json:"status"`
	ID            uuid.UUID          `json:"id"`
	BankAccountID uuid.UUID          `json:"bank_account_id"`
}
