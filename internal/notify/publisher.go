package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/retailbank/ledger/internal/config"
)

// Publisher delivers a JSON body under a routing key
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close() error
}

// AMQPPublisher publishes to a durable topic exchange
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("amqp url scheme must be amqp:// or amqps://")
	}
	return clean, nil
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("invalid amqp url: %w", err)
	}

	conn, err := amqp.Dial(cleanURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close() //nolint:errcheck // already failing
		_ = conn.Close()    //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish marshals body as JSON and sends it as a persistent message
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	// channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	return nil
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() error {
	chErr := p.channel.Close()
	connErr := p.conn.Close()
	return errors.Join(chErr, connErr)
}

// LogPublisher writes messages to the log instead of a broker
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the routing key and message id only. Bodies can carry OTPs
// and personal data, so they never reach the log.
func (p *LogPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	attrs := []any{"routing_key", routingKey}
	switch msg := body.(type) {
	case Event:
		attrs = append(attrs, "event_id", msg.ID)
	case ReportRequest:
		attrs = append(attrs, "report_id", msg.ID)
	}
	p.logger.InfoContext(ctx, "event published", attrs...)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

// NewPublisher connects to the configured broker, or logs messages when no
// broker URL is set
func NewPublisher(cfg *config.AMQPConfig, logger *slog.Logger) (Publisher, error) {
	if cfg.URL == "" {
		logger.Warn("AMQP_URL not set, events will only be logged")
		return NewLogPublisher(logger), nil
	}
	return NewAMQPPublisher(cfg.URL, cfg.Exchange)
}
