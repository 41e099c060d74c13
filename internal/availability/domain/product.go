package domain

import (
	"time"

	sharedDomain "github.com/avelstrom/availsync/internal/shared/domain"
	"github.com/google/uuid"
)

// DurationUnit is the granularity a product sells its time in.
type DurationUnit string

const (
	DurationUnitMinute DurationUnit = "minute"
	DurationUnitHour   DurationUnit = "hour"
	DurationUnitDay    DurationUnit = "day"
	DurationUnitNight  DurationUnit = "night"
	DurationUnitMonth  DurationUnit = "month"
)

// Product is a bookable item. Its availability-rule collection is the thing
// the engine mutates on behalf of sibling bookings.
type Product struct {
	sharedDomain.BaseEntity
	name         string
	durationUnit DurationUnit
}

// NewProduct creates a bookable product.
func NewProduct(name string, unit DurationUnit) *Product {
	return &Product{
		BaseEntity:   sharedDomain.NewBaseEntity(),
		name:         name,
		durationUnit: unit,
	}
}

func (p *Product) Name() string               { return p.name }
func (p *Product) DurationUnit() DurationUnit { return p.durationUnit }

// RehydrateProduct recreates a product from persisted state.
func RehydrateProduct(id uuid.UUID, name string, unit DurationUnit, createdAt, updatedAt time.Time) *Product {
	return &Product{
		BaseEntity:   sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		name:         name,
		durationUnit: unit,
	}
}
