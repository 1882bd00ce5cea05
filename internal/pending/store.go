// Package pending keeps the short-lived state that bridges the steps of the
// transfer and withdrawal workflows. Entries expire and are consumed at most once.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
)

// ErrNotFound is returned when a key is missing, expired or already consumed
var ErrNotFound = errors.New("pending entry not found")

// Store is a keyed byte store with expiry and atomic take
type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Take returns the value and removes it in one step
	Take(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Workflows stores typed workflow state keyed by user
type Workflows struct {
	store Store
}

// NewWorkflows wraps a Store
func NewWorkflows(store Store) *Workflows {
	return &Workflows{store: store}
}

func transferKey(userID uuid.UUID) string   { return "transfer:" + userID.String() }
func withdrawalKey(userID uuid.UUID) string { return "withdrawal:" + userID.String() }
func otpKey(userID uuid.UUID) string        { return "otp:" + userID.String() }

// SaveTransfer stores the user's pending transfer, replacing any earlier one
func (w *Workflows) SaveTransfer(ctx context.Context, transfer *models.PendingTransfer) error {
	return w.put(ctx, transferKey(transfer.UserID), transfer, time.Until(transfer.ExpiresAt))
}

// LoadTransfer returns the user's pending transfer without consuming it
func (w *Workflows) LoadTransfer(ctx context.Context, userID uuid.UUID) (*models.PendingTransfer, error) {
	var transfer models.PendingTransfer
	if err := w.get(ctx, transferKey(userID), &transfer, false); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// TakeTransfer returns and removes the user's pending transfer
func (w *Workflows) TakeTransfer(ctx context.Context, userID uuid.UUID) (*models.PendingTransfer, error) {
	var transfer models.PendingTransfer
	if err := w.get(ctx, transferKey(userID), &transfer, true); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// SaveWithdrawal stores the user's pending withdrawal, replacing any earlier one
func (w *Workflows) SaveWithdrawal(ctx context.Context, withdrawal *models.PendingWithdrawal) error {
	return w.put(ctx, withdrawalKey(withdrawal.UserID), withdrawal, time.Until(withdrawal.ExpiresAt))
}

// TakeWithdrawal returns and removes the user's pending withdrawal
func (w *Workflows) TakeWithdrawal(ctx context.Context, userID uuid.UUID) (*models.PendingWithdrawal, error) {
	var withdrawal models.PendingWithdrawal
	if err := w.get(ctx, withdrawalKey(userID), &withdrawal, true); err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

// SaveOTP stores the hash of the OTP issued to the user
func (w *Workflows) SaveOTP(ctx context.Context, userID uuid.UUID, otp *models.PendingOTP) error {
	return w.put(ctx, otpKey(userID), otp, time.Until(otp.ExpiresAt))
}

// LoadOTP returns the user's outstanding OTP without consuming it
func (w *Workflows) LoadOTP(ctx context.Context, userID uuid.UUID) (*models.PendingOTP, error) {
	var otp models.PendingOTP
	if err := w.get(ctx, otpKey(userID), &otp, false); err != nil {
		return nil, err
	}
	return &otp, nil
}

// TakeOTP returns and removes the user's outstanding OTP
func (w *Workflows) TakeOTP(ctx context.Context, userID uuid.UUID) (*models.PendingOTP, error) {
	var otp models.PendingOTP
	if err := w.get(ctx, otpKey(userID), &otp, true); err != nil {
		return nil, err
	}
	return &otp, nil
}

// ClearTransfer drops the user's pending transfer and OTP
func (w *Workflows) ClearTransfer(ctx context.Context, userID uuid.UUID) error {
	if err := w.store.Delete(ctx, otpKey(userID)); err != nil {
		return err
	}
	return w.store.Delete(ctx, transferKey(userID))
}

func (w *Workflows) put(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("pending entry %s already expired", key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode pending entry: %w", err)
	}

	return w.store.Put(ctx, key, data, ttl)
}

func (w *Workflows) get(ctx context.Context, key string, dest any, take bool) error {
	var (
		data []byte
		err  error
	)
	if take {
		data, err = w.store.Take(ctx, key)
	} else {
		data, err = w.store.Get(ctx, key)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode pending entry: %w", err)
	}
	return nil
}
