package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardStatus represents the state of a virtual card
type CardStatus string

const (
	CardStatusActive   CardStatus = "ACTIVE"
	CardStatusInactive CardStatus = "INACTIVE"
	CardStatusBlocked  CardStatus = "BLOCKED"
)

// VirtualCard is a prepaid card funded from one of its owner's accounts.
// CVV is derived from the card number and expiry and never stored.
type VirtualCard struct {
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	ExpiryDate    time.Time       `db:"expiry_date"`
	CardNumber    string          `db:"card_number"`
	CVV           string          `db:"-"`
	Status        CardStatus      `db:"status"`
	Balance       decimal.Decimal `db:"balance"`
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	BankAccountID uuid.UUID       `db:"bank_account_id"`
}
