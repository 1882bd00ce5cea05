package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStage is the step a pending transfer has reached
type TransferStage string

const (
	TransferStageInitiated        TransferStage = "INITIATED"
	TransferStageSecurityVerified TransferStage = "SECURITY_VERIFIED"
)

// PendingTransfer bridges the initiate, security question and OTP steps
type PendingTransfer struct {
	ExpiresAt             time.Time       `json:"expires_at"`
	SenderAccountNumber   string          `json:"sender_account_number"`
	ReceiverAccountNumber string          `json:"receiver_account_number"`
	Description           string          `json:"description"`
	Stage                 TransferStage   `json:"stage"`
	Amount                decimal.Decimal `json:"amount"`
	Token                 uuid.UUID       `json:"token"`
	UserID                uuid.UUID       `json:"user_id"`
}

// PendingWithdrawal bridges the initiate and username confirmation steps
type PendingWithdrawal struct {
	ExpiresAt     time.Time       `json:"expires_at"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Token         uuid.UUID       `json:"token"`
	UserID        uuid.UUID       `json:"user_id"`
}

// PendingOTP holds the hash of a one-time password issued for a transfer
type PendingOTP struct {
	ExpiresAt time.Time `json:"expires_at"`
	Hash      string    `json:"hash"`
}
