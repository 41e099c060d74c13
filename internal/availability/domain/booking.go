package domain

import (
	"time"

	sharedDomain "github.com/avelstrom/availsync/internal/shared/domain"
	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusTrashed   BookingStatus = "trashed"
	BookingStatusDeleted   BookingStatus = "deleted"
)

// Booking is a reservation against exactly one product. The engine only
// reads booking fields; the one thing it writes back is the rule snapshot.
type Booking struct {
	sharedDomain.BaseEntity
	productID uuid.UUID
	startsAt  time.Time
	endsAt    time.Time
	allDay    bool
	status    BookingStatus
}

// NewBooking creates a booking for a product.
func NewBooking(productID uuid.UUID, startsAt, endsAt time.Time, allDay bool) (*Booking, error) {
	if !endsAt.After(startsAt) {
		return nil, ErrInvalidSpan
	}
	return &Booking{
		BaseEntity: sharedDomain.NewBaseEntity(),
		productID:  productID,
		startsAt:   startsAt,
		endsAt:     endsAt,
		allDay:     allDay,
		status:     BookingStatusActive,
	}, nil
}

func (b *Booking) ProductID() uuid.UUID  { return b.productID }
func (b *Booking) StartsAt() time.Time   { return b.startsAt }
func (b *Booking) EndsAt() time.Time     { return b.endsAt }
func (b *Booking) AllDay() bool          { return b.allDay }
func (b *Booking) Status() BookingStatus { return b.status }

// Reschedule moves the booking to a new span.
func (b *Booking) Reschedule(startsAt, endsAt time.Time, allDay bool) error {
	if !endsAt.After(startsAt) {
		return ErrInvalidSpan
	}
	b.startsAt = startsAt
	b.endsAt = endsAt
	b.allDay = allDay
	b.Touch()
	return nil
}

// SetStatus transitions the booking's lifecycle state.
func (b *Booking) SetStatus(status BookingStatus) {
	b.status = status
	b.Touch()
}

// DeriveSnapshot produces the rule pair this booking occupies.
func (b *Booking) DeriveSnapshot() Snapshot {
	return DeriveSnapshot(b.startsAt, b.endsAt)
}

// RehydrateBooking recreates a booking from persisted state.
func RehydrateBooking(
	id uuid.UUID,
	productID uuid.UUID,
	startsAt, endsAt time.Time,
	allDay bool,
	status BookingStatus,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		productID:  productID,
		startsAt:   startsAt,
		endsAt:     endsAt,
		allDay:     allDay,
		status:     status,
	}
}
