package notify

import (
	"context"
	"log/slog"
	"time"
)

const publishTimeout = 5 * time.Second

// Notifier sends ledger events and report requests through a Publisher
type Notifier struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewNotifier creates a Notifier
func NewNotifier(publisher Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{publisher: publisher, logger: logger}
}

// Notify publishes an event. Failures are logged and never returned, since
// the change being announced is already committed.
func (n *Notifier) Notify(ctx context.Context, event Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.publisher.Publish(ctx, string(event.Type), event); err != nil {
		n.logger.Warn("failed to publish event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
		)
	}
}

// RequestTransactionReport queues rendering of a transaction history document
func (n *Notifier) RequestTransactionReport(ctx context.Context, req ReportRequest) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.publisher.Publish(ctx, string(EventReportRequested), req); err != nil {
		n.logger.Error("failed to queue transaction report", "error", err, "report_id", req.ID)
		return err
	}

	n.logger.Info("transaction report queued", "report_id", req.ID, "user_id", req.UserID)
	return nil
}
