// Package subscribers connects booking lifecycle events to the
// reconciliation engine.
package subscribers

import (
	"context"
	"log/slog"

	"github.com/avelstrom/availsync/internal/availability/application/commands"
	"github.com/avelstrom/availsync/internal/shared/infrastructure/eventbus"
	"github.com/avelstrom/availsync/pkg/observability"
)

// Booking lifecycle routing keys. Created and restored bookings add rules,
// a metadata save diffs against the stored snapshot, everything else
// retracts.
const (
	EventBookingCreated     = "bookings.booking.created"
	EventBookingRestored    = "bookings.booking.restored"
	EventBookingMetaSaved   = "bookings.booking.meta_saved"
	EventBookingTrashed     = "bookings.booking.trashed"
	EventBookingDeleted     = "bookings.booking.deleted"
	EventBookingCartRemoved = "bookings.booking.cart_removed"
	EventBookingCancelled   = "bookings.booking.cancelled"
)

const aggregateTypeBooking = "booking"

// BookingSubscriber consumes booking lifecycle events and dispatches them
// to the reconciliation engine. Reconciliation failures are logged and
// swallowed: the event is acked either way, nothing retries, and the
// booking flow that emitted the event is never blocked.
type BookingSubscriber struct {
	handler *commands.ReconcileHandler
	logger  *slog.Logger
}

// NewBookingSubscriber creates a new BookingSubscriber.
func NewBookingSubscriber(handler *commands.ReconcileHandler, logger *slog.Logger) *BookingSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingSubscriber{handler: handler, logger: logger}
}

// EventTypes returns the routing keys this subscriber consumes.
func (s *BookingSubscriber) EventTypes() []string {
	return []string{
		EventBookingCreated,
		EventBookingRestored,
		EventBookingMetaSaved,
		EventBookingTrashed,
		EventBookingDeleted,
		EventBookingCartRemoved,
		EventBookingCancelled,
	}
}

// Handle dispatches one lifecycle event. Always returns nil.
func (s *BookingSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	// Deletion-style keys fire for any aggregate kind; everything that is
	// not a booking is dropped without comment.
	if event.AggregateType != aggregateTypeBooking {
		return nil
	}

	ctx = observability.WithCorrelationID(ctx, event.EventID.String())

	var err error
	switch event.RoutingKey {
	case EventBookingCreated, EventBookingRestored:
		_, err = s.handler.HandleBookingCreated(ctx, event.AggregateID)
	case EventBookingMetaSaved:
		_, err = s.handler.HandleBookingUpdated(ctx, event.AggregateID)
	case EventBookingTrashed, EventBookingDeleted, EventBookingCartRemoved, EventBookingCancelled:
		_, err = s.handler.HandleBookingRemoved(ctx, event.AggregateID)
	default:
		return nil
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "booking reconciliation failed",
			"routing_key", event.RoutingKey,
			"booking_id", event.AggregateID,
			"error", err,
		)
	}
	return nil
}
