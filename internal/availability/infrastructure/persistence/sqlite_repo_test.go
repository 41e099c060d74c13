package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/avelstrom/availsync/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database with the schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), sqlDB))
	return sqlDB
}

func TestSQLiteBookingRepository(t *testing.T) {
	ctx := context.Background()
	sqlDB := setupTestDB(t)
	repo := NewSQLiteBookingRepository(sqlDB)

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	booking, err := domain.NewBooking(uuid.New(), start, start.Add(time.Hour), false)
	require.NoError(t, err)

	t.Run("save and find round-trips all fields", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, booking))

		found, err := repo.FindByID(ctx, booking.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, booking.ID(), found.ID())
		assert.Equal(t, booking.ProductID(), found.ProductID())
		assert.True(t, found.StartsAt().Equal(booking.StartsAt()))
		assert.True(t, found.EndsAt().Equal(booking.EndsAt()))
		assert.False(t, found.AllDay())
		assert.Equal(t, domain.BookingStatusActive, found.Status())
	})

	t.Run("save updates an existing booking", func(t *testing.T) {
		require.NoError(t, booking.Reschedule(start.Add(2*time.Hour), start.Add(3*time.Hour), true))
		require.NoError(t, repo.Save(ctx, booking))

		found, err := repo.FindByID(ctx, booking.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.AllDay())
		assert.True(t, found.StartsAt().Equal(start.Add(2*time.Hour)))
	})

	t.Run("find returns nil for an unknown booking", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("snapshot round-trips and is replaced on save", func(t *testing.T) {
		missing, err := repo.Snapshot(ctx, booking.ID())
		require.NoError(t, err)
		assert.Nil(t, missing)

		first := booking.DeriveSnapshot()
		require.NoError(t, repo.SaveSnapshot(ctx, booking.ID(), first))

		stored, err := repo.Snapshot(ctx, booking.ID())
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, first, *stored)

		second := domain.DeriveSnapshot(start.Add(24*time.Hour), start.Add(25*time.Hour))
		require.NoError(t, repo.SaveSnapshot(ctx, booking.ID(), second))

		stored, err = repo.Snapshot(ctx, booking.ID())
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, second, *stored)
	})

	t.Run("delete removes the booking and its snapshot", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, booking.ID()))

		found, err := repo.FindByID(ctx, booking.ID())
		require.NoError(t, err)
		assert.Nil(t, found)

		snapshot, err := repo.Snapshot(ctx, booking.ID())
		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})
}

func TestSQLiteProductRepository(t *testing.T) {
	ctx := context.Background()
	sqlDB := setupTestDB(t)
	repo := NewSQLiteProductRepository(sqlDB)

	product := domain.NewProduct("Kayak Tour", domain.DurationUnitHour)

	t.Run("save and find round-trips all fields", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, product))

		found, err := repo.FindByID(ctx, product.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Kayak Tour", found.Name())
		assert.Equal(t, domain.DurationUnitHour, found.DurationUnit())
	})

	t.Run("availability is empty before any save", func(t *testing.T) {
		rules, err := repo.Availability(ctx, product.ID())
		require.NoError(t, err)
		assert.Empty(t, rules)
	})

	t.Run("rule collection round-trips through JSON", func(t *testing.T) {
		rules := []domain.Rule{
			domain.DayRuleEntry(domain.DayRule{
				Type: "custom", Bookable: "no", Priority: 1,
				From: "2024-05-01", To: "2024-05-03",
			}),
			domain.TimeRuleEntry(domain.TimeRule{
				Type: "custom:daterange", Bookable: "no", Priority: 1,
				From: "09:00", To: "10:00", FromDate: "2024-05-01", ToDate: "2024-05-01",
			}),
		}
		require.NoError(t, repo.SaveAvailability(ctx, product.ID(), rules))

		loaded, err := repo.Availability(ctx, product.ID())
		require.NoError(t, err)
		assert.Equal(t, rules, loaded)
	})

	t.Run("save replaces the whole collection", func(t *testing.T) {
		require.NoError(t, repo.SaveAvailability(ctx, product.ID(), nil))

		loaded, err := repo.Availability(ctx, product.ID())
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestSQLiteResourceRepository(t *testing.T) {
	ctx := context.Background()
	sqlDB := setupTestDB(t)
	repo := NewSQLiteResourceRepository(sqlDB)

	resource := domain.NewResource("Instructor")
	p1 := uuid.New()
	p2 := uuid.New()

	t.Run("save then find by product", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, resource))
		require.NoError(t, repo.Attach(ctx, resource.ID(), p1, 0))

		found, err := repo.FindByProduct(ctx, p1)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, resource.ID(), found[0].ID())
		assert.Equal(t, "Instructor", found[0].Name())
	})

	t.Run("products come back in sort order", func(t *testing.T) {
		require.NoError(t, repo.Attach(ctx, resource.ID(), p2, -1))

		ids, err := repo.ProductsForResource(ctx, resource.ID())
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{p2, p1}, ids)
	})

	t.Run("attach is idempotent and updates the sort key", func(t *testing.T) {
		require.NoError(t, repo.Attach(ctx, resource.ID(), p2, 5))

		ids, err := repo.ProductsForResource(ctx, resource.ID())
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{p1, p2}, ids)
	})

	t.Run("no resources for an unattached product", func(t *testing.T) {
		found, err := repo.FindByProduct(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
