// Package memory provides in-memory repository implementations. They back
// unit tests and the throwaway local mode; state lives for the process only.
package memory

import (
	"context"
	"sync"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/google/uuid"
)

// BookingRepository is an in-memory domain.BookingRepository.
type BookingRepository struct {
	mu        sync.RWMutex
	bookings  map[uuid.UUID]*domain.Booking
	snapshots map[uuid.UUID]domain.Snapshot
}

// NewBookingRepository creates an empty in-memory booking repository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		bookings:  make(map[uuid.UUID]*domain.Booking),
		snapshots: make(map[uuid.UUID]domain.Snapshot),
	}
}

func (r *BookingRepository) Save(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID()] = booking
	return nil
}

func (r *BookingRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return booking, nil
}

func (r *BookingRepository) Snapshot(_ context.Context, bookingID uuid.UUID) (*domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot, ok := r.snapshots[bookingID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (r *BookingRepository) SaveSnapshot(_ context.Context, bookingID uuid.UUID, snapshot domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[bookingID] = snapshot
	return nil
}

func (r *BookingRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, id)
	delete(r.snapshots, id)
	return nil
}

// ProductRepository is an in-memory domain.ProductRepository.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
	rules    map[uuid.UUID][]domain.Rule
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
		rules:    make(map[uuid.UUID][]domain.Rule),
	}
}

func (r *ProductRepository) Save(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID()] = product
	return nil
}

func (r *ProductRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return product, nil
}

func (r *ProductRepository) Availability(_ context.Context, productID uuid.UUID) ([]domain.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rules := r.rules[productID]
	out := make([]domain.Rule, len(rules))
	copy(out, rules)
	return out, nil
}

func (r *ProductRepository) SaveAvailability(_ context.Context, productID uuid.UUID, rules []domain.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]domain.Rule, len(rules))
	copy(stored, rules)
	r.rules[productID] = stored
	return nil
}

type attachment struct {
	productID uuid.UUID
	sortOrder int
}

// ResourceRepository is an in-memory domain.ResourceRepository.
type ResourceRepository struct {
	mu          sync.RWMutex
	resources   map[uuid.UUID]*domain.Resource
	attachments map[uuid.UUID][]attachment
}

// NewResourceRepository creates an empty in-memory resource repository.
func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{
		resources:   make(map[uuid.UUID]*domain.Resource),
		attachments: make(map[uuid.UUID][]attachment),
	}
}

func (r *ResourceRepository) Save(_ context.Context, resource *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[resource.ID()] = resource
	return nil
}

func (r *ResourceRepository) FindByProduct(_ context.Context, productID uuid.UUID) ([]*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []*domain.Resource
	for resourceID, attachments := range r.attachments {
		for _, a := range attachments {
			if a.productID == productID {
				found = append(found, r.resources[resourceID])
				break
			}
		}
	}
	return found, nil
}

func (r *ResourceRepository) ProductsForResource(_ context.Context, resourceID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attachments := r.attachments[resourceID]
	ids := make([]uuid.UUID, len(attachments))
	for i, a := range attachments {
		ids[i] = a.productID
	}
	return ids, nil
}

func (r *ResourceRepository) Attach(_ context.Context, resourceID, productID uuid.UUID, sortOrder int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attachments := r.attachments[resourceID]
	for i, a := range attachments {
		if a.productID == productID {
			attachments[i].sortOrder = sortOrder
			r.resort(resourceID)
			return nil
		}
	}
	r.attachments[resourceID] = append(attachments, attachment{productID: productID, sortOrder: sortOrder})
	r.resort(resourceID)
	return nil
}

func (r *ResourceRepository) resort(resourceID uuid.UUID) {
	attachments := r.attachments[resourceID]
	for i := 1; i < len(attachments); i++ {
		for j := i; j > 0 && attachments[j].sortOrder < attachments[j-1].sortOrder; j-- {
			attachments[j], attachments[j-1] = attachments[j-1], attachments[j]
		}
	}
}
