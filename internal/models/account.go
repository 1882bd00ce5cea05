package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is an ISO code of a supported account currency
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyKES Currency = "KES"
)

// Valid reports whether c is a supported currency
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyGBP, CurrencyKES:
		return true
	}
	return false
}

// AccountType distinguishes current from savings accounts
type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeSavings AccountType = "SAVINGS"
)

// Valid reports whether t is a supported account type
func (t AccountType) Valid() bool {
	return t == AccountTypeCurrent || t == AccountTypeSavings
}

// AccountStatus represents the activation state of an account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

// Account represents a customer's bank account
type Account struct {
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	VerificationDate  *time.Time      `db:"verification_date"`
	VerifiedBy        *uuid.UUID      `db:"verified_by"`
	AccountNumber     string          `db:"account_number"`
	VerificationNotes string          `db:"verification_notes"`
	Currency          Currency        `db:"currency"`
	AccountType       AccountType     `db:"account_type"`
	Status            AccountStatus   `db:"status"`
	Balance           decimal.Decimal `db:"balance"`
	InterestRate      decimal.Decimal `db:"interest_rate"`
	ID                uuid.UUID       `db:"id"`
	UserID            uuid.UUID       `db:"user_id"`
	IsPrimary         bool            `db:"is_primary"`
	KYCSubmitted      bool            `db:"kyc_submitted"`
	KYCVerified       bool            `db:"kyc_verified"`
	FullyActivated    bool            `db:"fully_activated"`
}

// IsVerified reports whether the account may move money out
func (a *Account) IsVerified() bool {
	return a.FullyActivated && a.KYCVerified
}

// AccountOwner is an account joined with the identity of its holder
type AccountOwner struct {
	Account
	Username string
	FullName string
	Email    string
}

var (
	savingsTierMid  = decimal.NewFromInt(100000)
	savingsTierHigh = decimal.NewFromInt(500000)

	rateLow  = decimal.RequireFromString("0.0050")
	rateMid  = decimal.RequireFromString("0.0100")
	rateHigh = decimal.RequireFromString("0.0150")

	daysPerYear = decimal.NewFromInt(365)
)

// ComputeAnnualInterestRate returns the tiered annual rate for an account.
// Only savings accounts earn interest.
func ComputeAnnualInterestRate(accountType AccountType, balance decimal.Decimal) decimal.Decimal {
	if accountType != AccountTypeSavings {
		return decimal.Zero
	}

	switch {
	case balance.LessThan(savingsTierMid):
		return rateLow
	case balance.LessThan(savingsTierHigh):
		return rateMid
	default:
		return rateHigh
	}
}

// ComputeDailyInterest returns balance * rate / 365 rounded half up to cents
func ComputeDailyInterest(accountType AccountType, balance decimal.Decimal) decimal.Decimal {
	rate := ComputeAnnualInterestRate(accountType, balance)
	if rate.IsZero() {
		return decimal.Zero
	}
	return balance.Mul(rate).Div(daysPerYear).Round(2)
}
