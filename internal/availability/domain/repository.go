package domain

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines booking persistence, including the rule
// snapshot the engine writes back after each reconciliation.
type BookingRepository interface {
	// Save persists a booking (create or update).
	Save(ctx context.Context, booking *Booking) error

	// FindByID finds a booking by its ID. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Snapshot returns the rule snapshot last applied on behalf of the
	// booking. Returns nil, nil when none has been stored.
	Snapshot(ctx context.Context, bookingID uuid.UUID) (*Snapshot, error)

	// SaveSnapshot stores the booking's rule snapshot, replacing any
	// previous one.
	SaveSnapshot(ctx context.Context, bookingID uuid.UUID, snapshot Snapshot) error

	// Delete removes a booking.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines product persistence and the availability-rule
// collection the engine mutates for sibling products.
type ProductRepository interface {
	// Save persists a product (create or update).
	Save(ctx context.Context, product *Product) error

	// FindByID finds a product by its ID. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Availability returns the product's ordered rule collection.
	Availability(ctx context.Context, productID uuid.UUID) ([]Rule, error)

	// SaveAvailability replaces the product's rule collection.
	SaveAvailability(ctx context.Context, productID uuid.UUID, rules []Rule) error
}

// ResourceRepository defines resource persistence and the product/resource
// relationship store.
type ResourceRepository interface {
	// Save persists a resource (create or update).
	Save(ctx context.Context, resource *Resource) error

	// FindByProduct returns the resources attached to a product.
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*Resource, error)

	// ProductsForResource returns the IDs of all products attached to a
	// resource, ordered by the relationship's sort key.
	ProductsForResource(ctx context.Context, resourceID uuid.UUID) ([]uuid.UUID, error)

	// Attach links a product to a resource at the given sort position.
	Attach(ctx context.Context, resourceID, productID uuid.UUID, sortOrder int) error
}

// Settings exposes the externally managed toggles the engine consults. Both
// flags are observational config: reading them never mutates anything.
type Settings interface {
	// AutomationEnabled reports whether cross-product reconciliation is
	// switched on for the resource.
	AutomationEnabled(ctx context.Context, resourceID uuid.UUID) (bool, error)

	// LoggingEnabled reports whether the diagnostic sink should emit.
	LoggingEnabled(ctx context.Context) (bool, error)
}
