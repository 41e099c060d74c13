// Package eventbus delivers booking lifecycle events from the external
// commerce platform to registered consumers. A RabbitMQ-backed consumer is
// used in worker mode; the in-process bus serves local mode and tests.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventConsumer handles specific event types.
type EventConsumer interface {
	// EventTypes returns the routing keys this consumer handles,
	// e.g. ["bookings.booking.created", "bookings.booking.cancelled"].
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent represents an event received from the message bus.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewConsumedEvent creates a ConsumedEvent from raw data.
func NewConsumedEvent(aggregateID uuid.UUID, aggregateType, routingKey string, payload json.RawMessage) *ConsumedEvent {
	return &ConsumedEvent{
		EventID:       uuid.New(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		RoutingKey:    routingKey,
		OccurredAt:    time.Now().UTC(),
		Payload:       payload,
	}
}
