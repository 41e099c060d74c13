package memory

import (
	"context"
	"testing"
	"time"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	booking, err := domain.NewBooking(uuid.New(), start, start.Add(time.Hour), false)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, booking.ID())
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, repo.Save(ctx, booking))
	found, err = repo.FindByID(ctx, booking.ID())
	require.NoError(t, err)
	assert.Equal(t, booking, found)

	snapshot, err := repo.Snapshot(ctx, booking.ID())
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	require.NoError(t, repo.SaveSnapshot(ctx, booking.ID(), booking.DeriveSnapshot()))
	snapshot, err = repo.Snapshot(ctx, booking.ID())
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, booking.DeriveSnapshot(), *snapshot)

	require.NoError(t, repo.Delete(ctx, booking.ID()))
	found, err = repo.FindByID(ctx, booking.ID())
	require.NoError(t, err)
	assert.Nil(t, found)
	snapshot, err = repo.Snapshot(ctx, booking.ID())
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()

	product := domain.NewProduct("Tour", domain.DurationUnitHour)
	require.NoError(t, repo.Save(ctx, product))

	found, err := repo.FindByID(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, product, found)

	rules, err := repo.Availability(ctx, product.ID())
	require.NoError(t, err)
	assert.Empty(t, rules)

	stored := []domain.Rule{domain.DayRuleEntry(domain.DayRule{
		Type: "custom", Bookable: "no", Priority: 1,
		From: "2024-05-01", To: "2024-05-01",
	})}
	require.NoError(t, repo.SaveAvailability(ctx, product.ID(), stored))

	// The stored collection is isolated from caller mutations.
	loaded, err := repo.Availability(ctx, product.ID())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	loaded[0].Day.From = "mutated"

	again, err := repo.Availability(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", again[0].Day.From)
}

func TestResourceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewResourceRepository()

	resource := domain.NewResource("Instructor")
	require.NoError(t, repo.Save(ctx, resource))

	p1 := uuid.New()
	p2 := uuid.New()
	require.NoError(t, repo.Attach(ctx, resource.ID(), p1, 1))
	require.NoError(t, repo.Attach(ctx, resource.ID(), p2, 0))

	found, err := repo.FindByProduct(ctx, p1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, resource.ID(), found[0].ID())

	ids, err := repo.ProductsForResource(ctx, resource.ID())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p2, p1}, ids)

	// Re-attach moves the product within the sibling order.
	require.NoError(t, repo.Attach(ctx, resource.ID(), p2, 2))
	ids, err = repo.ProductsForResource(ctx, resource.ID())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p1, p2}, ids)
}
