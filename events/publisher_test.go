package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-meal-api/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool

	// async delivery outcome, reported like kafka.Writer does
	deliveryErr error
	completion  func([]kafka.Message, error)
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	if w.completion != nil {
		w.completion(msgs, w.deliveryErr)
	}
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherKeysByOrder(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Publish(context.Background(), OrderEvent{
		Type:    OrderStatusChanged,
		OrderID: "ORD-ABC",
		UserID:  7,
		Status:  models.StatusReady,
		At:      at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("ORD-ABC"), w.msgs[0].Key)
	assert.Equal(t, at, w.msgs[0].Time)

	var got OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, OrderStatusChanged, got.Type)
	assert.Equal(t, models.StatusReady, got.Status)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherLogsFailedDelivery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	p := NewKafkaPublisher([]string{"localhost:9092"}, "orders", logger)

	kw, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	require.NotNil(t, kw.Completion)
	require.NoError(t, kw.Close())

	w := &fakeWriter{deliveryErr: errors.New("broker unreachable"), completion: kw.Completion}
	p.writer = w

	err := p.Publish(context.Background(), OrderEvent{Type: OrderCreated, OrderID: "ORD-LOST"})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "order event not delivered")
	assert.Contains(t, out, "ORD-LOST")
	assert.Contains(t, out, "broker unreachable")

	buf.Reset()
	w.deliveryErr = nil
	require.NoError(t, p.Publish(context.Background(), OrderEvent{Type: OrderCreated, OrderID: "ORD-OK"}))
	assert.Empty(t, buf.String())
}

func TestRecorderSnapshot(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), OrderEvent{Type: OrderCreated, OrderID: "a"}))
	snap := r.Events()
	require.NoError(t, r.Publish(context.Background(), OrderEvent{Type: OrderDeleted, OrderID: "a"}))
	assert.Len(t, snap, 1)
	assert.Len(t, r.Events(), 2)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), OrderEvent{}))
	assert.NoError(t, p.Close())
}
