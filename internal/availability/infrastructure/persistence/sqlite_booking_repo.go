package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/google/uuid"
)

// SQLiteBookingRepository implements domain.BookingRepository using SQLite.
type SQLiteBookingRepository struct {
	db *sql.DB
}

// NewSQLiteBookingRepository creates a new SQLite booking repository.
func NewSQLiteBookingRepository(db *sql.DB) *SQLiteBookingRepository {
	return &SQLiteBookingRepository{db: db}
}

// Save persists a booking to the database.
func (r *SQLiteBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, product_id, starts_at, ends_at, all_day, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			product_id = excluded.product_id,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			all_day = excluded.all_day,
			status = excluded.status,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		booking.ID().String(),
		booking.ProductID().String(),
		booking.StartsAt().Format(time.RFC3339),
		booking.EndsAt().Format(time.RFC3339),
		boolToInt64(booking.AllDay()),
		string(booking.Status()),
		booking.CreatedAt().Format(time.RFC3339),
		booking.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByID retrieves a booking by its ID.
func (r *SQLiteBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `
		SELECT id, product_id, starts_at, ends_at, all_day, status, created_at, updated_at
		FROM bookings
		WHERE id = ?
	`

	var (
		rawID        string
		rawProductID string
		startsAt     string
		endsAt       string
		allDay       int64
		status       string
		createdAt    string
		updatedAt    string
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &rawProductID, &startsAt, &endsAt, &allDay, &status, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	bookingID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse booking id: %w", err)
	}
	productID, err := uuid.Parse(rawProductID)
	if err != nil {
		return nil, fmt.Errorf("parse product id: %w", err)
	}
	start, err := parseTime(startsAt)
	if err != nil {
		return nil, err
	}
	end, err := parseTime(endsAt)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateBooking(
		bookingID, productID, start, end, allDay != 0,
		domain.BookingStatus(status), created, updated,
	), nil
}

// Snapshot retrieves the rule snapshot last stored for a booking.
func (r *SQLiteBookingRepository) Snapshot(ctx context.Context, bookingID uuid.UUID) (*domain.Snapshot, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT snapshot FROM booking_rule_snapshots WHERE booking_id = ?`,
		bookingID.String(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot for booking %s: %w", bookingID, err)
	}
	return &snapshot, nil
}

// SaveSnapshot stores the booking's rule snapshot, replacing any previous
// one.
func (r *SQLiteBookingRepository) SaveSnapshot(ctx context.Context, bookingID uuid.UUID, snapshot domain.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot for booking %s: %w", bookingID, err)
	}

	query := `
		INSERT INTO booking_rule_snapshots (booking_id, snapshot, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (booking_id) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		bookingID.String(),
		string(raw),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Delete removes a booking and its snapshot.
func (r *SQLiteBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_rule_snapshots WHERE booking_id = ?`, id.String()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id.String()); err != nil {
		return err
	}
	return tx.Commit()
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}
