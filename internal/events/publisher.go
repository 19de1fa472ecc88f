package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Event types
const (
	TypeDelivered = "delivered"
	TypeAborted   = "aborted"
)

// Broker settings
const (
	ExchangeKind       = "topic"
	ContentTypeJSON    = "application/json"
	DefaultPublishWait = 5 * time.Second
)

// Event describes one finished request
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	OwnerID   int64     `json:"owner_id"`
	Platform  string    `json:"platform,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	AudioOnly bool      `json:"audio_only,omitempty"`
	At        time.Time `json:"at"`
}

// NewEvent creates an event with a fresh id
func NewEvent(eventType string, owner int64, at time.Time) Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Event{ID: id.String(), Type: eventType, OwnerID: owner, At: at.UTC()}
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards events
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, Event) error { return nil }

// Close does nothing
func (Nop) Close() error { return nil }

// Config holds broker settings
type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// RabbitPublisher publishes events as persistent JSON messages to a topic
// exchange
type RabbitPublisher struct {
	config Config
	conn   *amqp.Connection
	ch     *amqp.Channel
	mu     sync.Mutex
	log    zerolog.Logger
}

// NewRabbitPublisher connects to the broker and declares the exchange
func NewRabbitPublisher(cfg Config, log zerolog.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		ExchangeKind, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info().Str("exchange", cfg.Exchange).Msg("RabbitMQ publisher ready")
	return &RabbitPublisher{config: cfg, conn: conn, ch: ch, log: log}, nil
}

// Publish sends e to the configured exchange
func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultPublishWait)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.config.Exchange,
		p.config.RoutingKey+"."+e.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  ContentTypeJSON,
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ID,
			Timestamp:    e.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close closes the channel and connection
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
