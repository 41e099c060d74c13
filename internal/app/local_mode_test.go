package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/avelstrom/availsync/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLocalModeContainer verifies a local mode container can be created and
// drives a full reconciliation against the SQLite file.
func TestLocalModeContainer(t *testing.T) {
	tempDir := t.TempDir()

	cfg := &config.Config{
		AppEnv:          "test",
		LocalMode:       true,
		DatabaseDriver:  "sqlite",
		SQLitePath:      filepath.Join(tempDir, "test.db"),
		SettingsTimeout: time.Second,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx := context.Background()

	container, err := NewLocalContainer(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, container)
	defer container.Close()

	// SQLite mode: no PostgreSQL pool.
	assert.NotNil(t, container.DBConn)
	assert.Nil(t, container.DB)
	assert.Nil(t, container.RedisClient)

	assert.NotNil(t, container.BookingRepo)
	assert.NotNil(t, container.ProductRepo)
	assert.NotNil(t, container.ResourceRepo)
	assert.NotNil(t, container.Settings)
	assert.NotNil(t, container.SettingsWriter)
	assert.NotNil(t, container.ReconcileHandler)
	assert.NotNil(t, container.BookingSubscriber)
	assert.NotNil(t, container.EventBus)

	// End to end: two products on one resource, a booking on the first
	// pushes a rule onto the second.
	resource := domain.NewResource("Instructor")
	require.NoError(t, container.ResourceRepo.Save(ctx, resource))
	require.NoError(t, container.SettingsWriter.SetAutomation(ctx, resource.ID(), true))

	booked := domain.NewProduct("Tour", domain.DurationUnitHour)
	sibling := domain.NewProduct("Class", domain.DurationUnitHour)
	require.NoError(t, container.ProductRepo.Save(ctx, booked))
	require.NoError(t, container.ProductRepo.Save(ctx, sibling))
	require.NoError(t, container.ResourceRepo.Attach(ctx, resource.ID(), booked.ID(), 0))
	require.NoError(t, container.ResourceRepo.Attach(ctx, resource.ID(), sibling.ID(), 1))

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	booking, err := domain.NewBooking(booked.ID(), start, start.Add(time.Hour), false)
	require.NoError(t, err)
	require.NoError(t, container.BookingRepo.Save(ctx, booking))

	result, err := container.ReconcileHandler.HandleBookingCreated(ctx, booking.ID())
	require.NoError(t, err)
	require.Len(t, result.Siblings, 1)
	assert.Equal(t, sibling.ID(), result.Siblings[0])

	rules, err := container.ProductRepo.Availability(ctx, sibling.ID())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "09:00", rules[0].Time.From)
}
