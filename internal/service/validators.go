package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinimumDeposit is the smallest amount a teller may deposit
var MinimumDeposit = decimal.RequireFromString("0.1")

// ValidateAmount checks that amount is positive with at most two decimal places
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("invalid amount: must be greater than 0")
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("invalid amount: at most 2 decimal places allowed")
	}

	return nil
}

// ValidateDepositAmount additionally enforces the deposit minimum
func ValidateDepositAmount(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if amount.LessThan(MinimumDeposit) {
		return fmt.Errorf("invalid amount: minimum deposit is %s", MinimumDeposit.StringFixed(2))
	}

	return nil
}

// NormalizeSecurityAnswer makes answer comparison case and whitespace insensitive
func NormalizeSecurityAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func validationError(err error) *ServiceError {
	return &ServiceError{Code: ErrCodeValidation, Message: err.Error()}
}
