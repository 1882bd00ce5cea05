package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ServiceError
		want string
	}{
		{
			name: "message only",
			err:  newError(ErrCodeInsufficientFunds, "insufficient funds"),
			want: "insufficient funds",
		},
		{
			name: "message with cause",
			err:  internalError("failed to commit transaction", errors.New("connection reset")),
			want: "failed to commit transaction: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := internalError("wrapped", cause)

	assert.ErrorIs(t, err, cause)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeSameAccount, ErrorCode(newError(ErrCodeSameAccount, "same")))
	assert.Equal(t, ErrCodeCardNotFound, ErrorCode(fmt.Errorf("outer: %w", newError(ErrCodeCardNotFound, "x"))))
	assert.Equal(t, ErrCodeInternalError, ErrorCode(errors.New("plain")))
}
