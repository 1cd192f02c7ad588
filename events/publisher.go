// Package events publishes order lifecycle notifications so dashboards can
// react to changes instead of polling.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"hospital-meal-api/models"
)

type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderStatusChanged EventType = "order.status_changed"
	OrderDeleted       EventType = "order.deleted"
)

// OrderEvent is the payload written for every order change.
type OrderEvent struct {
	Type      EventType          `json:"type"`
	OrderID   string             `json:"order_id"`
	UserID    uint               `json:"user_id"`
	Status    models.OrderStatus `json:"status,omitempty"`
	OrderType models.OrderType   `json:"order_type,omitempty"`
	At        time.Time          `json:"at"`
}

// Publisher delivers order events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
func (Nop) Close() error                              { return nil }

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by order id so all changes of
// one order land on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *slog.Logger
}

// NewKafkaPublisher creates an async writer for the given brokers and topic.
// WriteMessages never reports delivery errors in async mode, so failed
// batches are logged from the writer's completion callback.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &KafkaPublisher{topic: topic, log: logger.With("component", "events")}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion:             p.completed,
	}
	return p
}

func (p *KafkaPublisher) completed(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		p.log.Warn("order event not delivered",
			"topic", p.topic, "order_id", string(m.Key), "error", err)
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e OrderEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OrderID),
		Value: b,
		Time:  e.At,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Recorder keeps published events in memory. Handy in tests.
type Recorder struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (r *Recorder) Publish(_ context.Context, e OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a snapshot of everything published so far.
func (r *Recorder) Events() []OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]OrderEvent, len(r.events))
	copy(out, r.events)
	return out
}
