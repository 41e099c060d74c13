package subscribers

import (
	"context"
	"testing"
	"time"

	"github.com/avelstrom/availsync/internal/availability/application/commands"
	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/avelstrom/availsync/internal/availability/infrastructure/persistence/memory"
	"github.com/avelstrom/availsync/internal/availability/infrastructure/settings"
	"github.com/avelstrom/availsync/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	bookings   *memory.BookingRepository
	products   *memory.ProductRepository
	resources  *memory.ResourceRepository
	subscriber *BookingSubscriber

	booking *domain.Booking
	sibling *domain.Product
}

// setupWorld builds a resource shared by two products plus a booking on
// the first product.
func setupWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()

	w := &world{
		bookings:  memory.NewBookingRepository(),
		products:  memory.NewProductRepository(),
		resources: memory.NewResourceRepository(),
	}
	store := settings.NewMemoryStore()
	handler := commands.NewReconcileHandler(w.bookings, w.products, w.resources, store, nil)
	w.subscriber = NewBookingSubscriber(handler, nil)

	resource := domain.NewResource("Instructor")
	require.NoError(t, w.resources.Save(ctx, resource))
	require.NoError(t, store.SetAutomation(ctx, resource.ID(), true))

	booked := domain.NewProduct("Tour", domain.DurationUnitHour)
	w.sibling = domain.NewProduct("Class", domain.DurationUnitHour)
	require.NoError(t, w.products.Save(ctx, booked))
	require.NoError(t, w.products.Save(ctx, w.sibling))
	require.NoError(t, w.resources.Attach(ctx, resource.ID(), booked.ID(), 0))
	require.NoError(t, w.resources.Attach(ctx, resource.ID(), w.sibling.ID(), 1))

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	booking, err := domain.NewBooking(booked.ID(), start, start.Add(time.Hour), false)
	require.NoError(t, err)
	require.NoError(t, w.bookings.Save(ctx, booking))
	w.booking = booking

	return w
}

func (w *world) event(routingKey string) *eventbus.ConsumedEvent {
	return eventbus.NewConsumedEvent(w.booking.ID(), aggregateTypeBooking, routingKey, nil)
}

func (w *world) siblingRules(t *testing.T) []domain.Rule {
	t.Helper()
	rules, err := w.products.Availability(context.Background(), w.sibling.ID())
	require.NoError(t, err)
	return rules
}

func TestBookingSubscriber_EventTypes(t *testing.T) {
	w := setupWorld(t)
	assert.ElementsMatch(t, []string{
		"bookings.booking.created",
		"bookings.booking.restored",
		"bookings.booking.meta_saved",
		"bookings.booking.trashed",
		"bookings.booking.deleted",
		"bookings.booking.cart_removed",
		"bookings.booking.cancelled",
	}, w.subscriber.EventTypes())
}

func TestBookingSubscriber_Handle(t *testing.T) {
	addKeys := []string{EventBookingCreated, EventBookingRestored}
	for _, key := range addKeys {
		t.Run(key+" adds rules to siblings", func(t *testing.T) {
			w := setupWorld(t)
			require.NoError(t, w.subscriber.Handle(context.Background(), w.event(key)))
			assert.Len(t, w.siblingRules(t), 1)
		})
	}

	t.Run("meta_saved reconciles against the stored snapshot", func(t *testing.T) {
		w := setupWorld(t)
		require.NoError(t, w.subscriber.Handle(context.Background(), w.event(EventBookingCreated)))

		start := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
		require.NoError(t, w.booking.Reschedule(start, start.Add(time.Hour), false))
		require.NoError(t, w.bookings.Save(context.Background(), w.booking))

		require.NoError(t, w.subscriber.Handle(context.Background(), w.event(EventBookingMetaSaved)))

		rules := w.siblingRules(t)
		require.Len(t, rules, 1)
		assert.Equal(t, "14:00", rules[0].Time.From)
	})

	removeKeys := []string{EventBookingTrashed, EventBookingDeleted, EventBookingCartRemoved, EventBookingCancelled}
	for _, key := range removeKeys {
		t.Run(key+" retracts rules from siblings", func(t *testing.T) {
			w := setupWorld(t)
			require.NoError(t, w.subscriber.Handle(context.Background(), w.event(EventBookingCreated)))
			require.Len(t, w.siblingRules(t), 1)

			require.NoError(t, w.subscriber.Handle(context.Background(), w.event(key)))
			assert.Empty(t, w.siblingRules(t))
		})
	}

	t.Run("ignores events for other aggregate kinds", func(t *testing.T) {
		w := setupWorld(t)
		event := eventbus.NewConsumedEvent(w.booking.ID(), "order", EventBookingDeleted, nil)
		require.NoError(t, w.subscriber.Handle(context.Background(), event))
		assert.Empty(t, w.siblingRules(t))
	})

	t.Run("swallows reconciliation failures", func(t *testing.T) {
		w := setupWorld(t)
		event := eventbus.NewConsumedEvent(uuid.New(), aggregateTypeBooking, EventBookingCreated, nil)
		assert.NoError(t, w.subscriber.Handle(context.Background(), event))
	})
}
