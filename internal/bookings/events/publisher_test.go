package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lilo/pkg/kafka"
	"lilo/pkg/middleware"
	"lilo/pkg/model"
)

type captureProducer struct {
	published []kafka.Message
}

func (c *captureProducer) Publish(_ context.Context, msg kafka.Message) error {
	c.published = append(c.published, msg)
	return nil
}

func (c *captureProducer) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &captureProducer{}
	pub := NewKafkaPublisher(producer)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	event := model.BookingEvent{
		Type:       model.EventBookingCreated,
		Booking:    model.Booking{ID: "65a000000000000000000001", RequestedDate: "2025-01-06", RequestedTime: "10:00"},
		OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(producer.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(producer.published))
	}

	msg := producer.published[0]
	if msg.Key != event.Booking.ID {
		t.Errorf("key = %q, want booking id", msg.Key)
	}
	if msg.EventType() != model.EventBookingCreated {
		t.Errorf("event type = %q", msg.EventType())
	}
	if msg.CorrelationID() != "req-42" {
		t.Errorf("correlation id = %q, want req-42", msg.CorrelationID())
	}
	if msg.Headers[kafka.HeaderSource] != Source {
		t.Errorf("source = %q", msg.Headers[kafka.HeaderSource])
	}

	var decoded model.BookingEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if decoded.Booking.RequestedTime != "10:00" {
		t.Errorf("decoded time = %q", decoded.Booking.RequestedTime)
	}
}

func TestNewMessage_RequiresBookingID(t *testing.T) {
	if _, err := NewMessage(context.Background(), model.BookingEvent{Type: model.EventBookingCreated}); err == nil {
		t.Error("expected error for event without booking id")
	}
}
