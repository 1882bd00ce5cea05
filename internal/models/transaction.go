package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeInterest   TransactionType = "INTEREST"
)

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable journal entry for a movement of funds.
// Account references become nil when the account is removed.
type Transaction struct {
	CreatedAt         time.Time         `db:"created_at"`
	SenderID          *uuid.UUID        `db:"sender_id"`
	ReceiverID        *uuid.UUID        `db:"receiver_id"`
	SenderAccountID   *uuid.UUID        `db:"sender_account_id"`
	ReceiverAccountID *uuid.UUID        `db:"receiver_account_id"`
	Description       string            `db:"description"`
	Type              TransactionType   `db:"type"`
	Status            TransactionStatus `db:"status"`
	Amount            decimal.Decimal   `db:"amount"`
	ID                uuid.UUID         `db:"id"`
}

// TransactionFilter narrows a journal query. Zero values are ignored.
type TransactionFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	AccountNumber string
}

// TransactionPage is one page of a journal query ordered newest first
type TransactionPage struct {
	Items      []*Transaction
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// IdempotencyKey tracks processed requests to prevent duplicate transactions
type IdempotencyKey struct {
	CreatedAt      time.Time `db:"created_at"`
	Key            string    `db:"key"`
	RequestPath    string    `db:"request_path"`
	ResponseBody   string    `db:"response_body"`
	ResponseStatus int       `db:"response_status"`
}
