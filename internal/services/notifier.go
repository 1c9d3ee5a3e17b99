package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DocumentEvent is published whenever a document finishes processing.
type DocumentEvent struct {
	DocumentID  string    `json:"document_id"`
	CandidateID string    `json:"candidate_id,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Notifier interface {
	Publish(ctx context.Context, event DocumentEvent) error
	Close() error
}

type rabbitNotifier struct {
	conn     *amqp.Connection
	exchange string
	log      *zap.Logger
}

// NewRabbitNotifier connects to the broker and declares a durable topic
// exchange. Events are routed as document.<status>.
func NewRabbitNotifier(url, exchange string, log *zap.Logger) (Notifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Info("✅ Connected to RabbitMQ", zap.String("exchange", exchange))
	return &rabbitNotifier{conn: conn, exchange: exchange, log: log}, nil
}

func (n *rabbitNotifier) Publish(ctx context.Context, event DocumentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch, err := n.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = ch.Publish(
		n.exchange,
		"document."+event.Status,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (n *rabbitNotifier) Close() error {
	return n.conn.Close()
}

type noopNotifier struct{}

// NewNoopNotifier is used when no broker is configured.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) Publish(context.Context, DocumentEvent) error { return nil }

func (noopNotifier) Close() error { return nil }
