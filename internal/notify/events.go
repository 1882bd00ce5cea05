// Package notify publishes ledger events for downstream consumers such as
// email delivery and report rendering.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the routing key of an event on the exchange
type EventType string

const (
	EventAccountCreated      EventType = "account.created"
	EventAccountActivated    EventType = "account.activated"
	EventDepositConfirmed    EventType = "deposit.confirmed"
	EventWithdrawalConfirmed EventType = "withdrawal.confirmed"
	EventTransferSent        EventType = "transfer.sent"
	EventTransferReceived    EventType = "transfer.received"
	EventTransferOTP         EventType = "transfer.otp"
	EventCardToppedUp        EventType = "card.topped_up"
	EventSuspiciousActivity  EventType = "activity.suspicious"
	EventReportRequested     EventType = "report.requested"
)

// Event is a fire-and-forget notification about something that already happened
type Event struct {
	OccurredAt time.Time      `json:"occurred_at"`
	UserID     *uuid.UUID     `json:"user_id,omitempty"`
	Payload    map[string]any `json:"payload"`
	Type       EventType      `json:"type"`
	ID         uuid.UUID      `json:"id"`
}

// NewEvent stamps an event with an id and the current time
func NewEvent(eventType EventType, userID *uuid.UUID, payload map[string]any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// ReportRequest asks the report renderer for a transaction history document
type ReportRequest struct {
	RequestedAt   time.Time  `json:"requested_at"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	AccountNumber string     `json:"account_number,omitempty"`
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
}
