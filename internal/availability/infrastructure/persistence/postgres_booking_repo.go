// Package persistence implements the availability repositories on
// PostgreSQL (pgx) and SQLite (modernc driver, for local mode).
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBookingRepository implements domain.BookingRepository using
// PostgreSQL.
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgreSQL booking repository.
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// Save persists a booking to the database.
func (r *PostgresBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, product_id, starts_at, ends_at, all_day, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			all_day = EXCLUDED.all_day,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		booking.ID(),
		booking.ProductID(),
		booking.StartsAt(),
		booking.EndsAt(),
		booking.AllDay(),
		string(booking.Status()),
		booking.CreatedAt(),
		booking.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a booking by its ID.
func (r *PostgresBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `
		SELECT id, product_id, starts_at, ends_at, all_day, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var (
		bookingID uuid.UUID
		productID uuid.UUID
		startsAt  time.Time
		endsAt    time.Time
		allDay    bool
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&bookingID, &productID, &startsAt, &endsAt, &allDay, &status, &createdAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return domain.RehydrateBooking(
		bookingID, productID, startsAt, endsAt, allDay,
		domain.BookingStatus(status), createdAt, updatedAt,
	), nil
}

// Snapshot retrieves the rule snapshot last stored for a booking.
func (r *PostgresBookingRepository) Snapshot(ctx context.Context, bookingID uuid.UUID) (*domain.Snapshot, error) {
	query := `SELECT snapshot FROM booking_rule_snapshots WHERE booking_id = $1`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, bookingID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot for booking %s: %w", bookingID, err)
	}
	return &snapshot, nil
}

// SaveSnapshot stores the booking's rule snapshot, replacing any previous
// one.
func (r *PostgresBookingRepository) SaveSnapshot(ctx context.Context, bookingID uuid.UUID, snapshot domain.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot for booking %s: %w", bookingID, err)
	}

	query := `
		INSERT INTO booking_rule_snapshots (booking_id, snapshot, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (booking_id) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			updated_at = NOW()
	`
	_, err = r.pool.Exec(ctx, query, bookingID, raw)
	return err
}

// Delete removes a booking and its snapshot.
func (r *PostgresBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM booking_rule_snapshots WHERE booking_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
