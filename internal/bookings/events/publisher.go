package events

import (
	"context"
	"fmt"

	"lilo/pkg/kafka"
	"lilo/pkg/middleware"
	"lilo/pkg/model"
)

const (
	Source        = "bookings"
	SchemaVersion = "1"
)

type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
	Close() error
}

// MessagePublisher is the subset of *kafka.Producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) Publisher {
	return &kafkaPublisher{producer: producer}
}

// Publish keys events by booking id so one booking's events stay ordered.
func (p *kafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := NewMessage(ctx, event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

func NewMessage(ctx context.Context, event model.BookingEvent) (kafka.Message, error) {
	if event.Booking.ID == "" {
		return kafka.Message{}, fmt.Errorf("booking event %s has no booking id", event.Type)
	}
	return kafka.NewMessage().
		WithKey(event.Booking.ID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
}

type noopPublisher struct{}

// NewNoopPublisher drops events; used when no Kafka brokers are configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, model.BookingEvent) error { return nil }
func (noopPublisher) Close() error                                      { return nil }
