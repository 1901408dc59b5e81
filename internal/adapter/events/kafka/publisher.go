package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"media-favorites/internal/core/domain/favorites"
	"media-favorites/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "favorites.events"

// messageWriter is the part of *kafka.Writer the publisher relies on.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes favorites events to a Kafka topic, keyed by user so that
// one user's events stay ordered within a partition.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

var _ ports.EventPublisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	})
}

func newPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, timeout: 2 * time.Second}
}

func (p *Publisher) Publish(ctx context.Context, event favorites.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
		Time: event.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Noop drops every event. It serves when no brokers are configured.
type Noop struct{}

var _ ports.EventPublisher = Noop{}

func (Noop) Publish(context.Context, favorites.Event) error { return nil }
