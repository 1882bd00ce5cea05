package service

import (
	"errors"
	"fmt"
)

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeValidation             = "validation_error"
	ErrCodeAccountNotFound        = "account_not_found"
	ErrCodeCardNotFound           = "card_not_found"
	ErrCodeForbidden              = "forbidden"
	ErrCodeAccountNotVerified     = "account_not_verified"
	ErrCodeInsufficientFunds      = "insufficient_funds"
	ErrCodeCurrencyMismatch       = "currency_mismatch"
	ErrCodeSameAccount            = "same_account"
	ErrCodeDuplicateAccount       = "duplicate_account"
	ErrCodeCardLimitExceeded      = "card_limit_exceeded"
	ErrCodeNonZeroBalance         = "non_zero_balance"
	ErrCodeSecurityAnswerMismatch = "security_answer_mismatch"
	ErrCodeOTPInvalidOrExpired    = "otp_invalid_or_expired"
	ErrCodeNoPendingTransfer      = "no_pending_transfer"
	ErrCodeNoPendingWithdrawal    = "no_pending_withdrawal"
	ErrCodeAlreadyVerified        = "already_verified"
	ErrCodeKYCSequence            = "kyc_sequence"
	ErrCodeConfig                 = "config_error"
	ErrCodeUsernameMismatch       = "username_mismatch"
	ErrCodeInternalError          = "internal_error"
)

func newError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

func internalError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeInternalError, Message: message, Err: err}
}

// ErrorCode returns the code of a ServiceError anywhere in err's chain,
// or ErrCodeInternalError for anything else
func ErrorCode(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ErrCodeInternalError
}
