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

// SQLiteProductRepository implements domain.ProductRepository using SQLite.
type SQLiteProductRepository struct {
	db *sql.DB
}

// NewSQLiteProductRepository creates a new SQLite product repository.
func NewSQLiteProductRepository(db *sql.DB) *SQLiteProductRepository {
	return &SQLiteProductRepository{db: db}
}

// Save persists a product to the database.
func (r *SQLiteProductRepository) Save(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, duration_unit, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			duration_unit = excluded.duration_unit,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		product.ID().String(),
		product.Name(),
		string(product.DurationUnit()),
		product.CreatedAt().Format(time.RFC3339),
		product.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByID retrieves a product by its ID.
func (r *SQLiteProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT id, name, duration_unit, created_at, updated_at FROM products WHERE id = ?`

	var (
		rawID     string
		name      string
		unit      string
		createdAt string
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&rawID, &name, &unit, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	productID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse product id: %w", err)
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateProduct(productID, name, domain.DurationUnit(unit), created, updated), nil
}

// Availability returns the product's ordered rule collection.
func (r *SQLiteProductRepository) Availability(ctx context.Context, productID uuid.UUID) ([]domain.Rule, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT rules FROM product_availability WHERE product_id = ?`,
		productID.String(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rules []domain.Rule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("decode rules for product %s: %w", productID, err)
	}
	return rules, nil
}

// SaveAvailability replaces the product's rule collection.
func (r *SQLiteProductRepository) SaveAvailability(ctx context.Context, productID uuid.UUID, rules []domain.Rule) error {
	if rules == nil {
		rules = []domain.Rule{}
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rules for product %s: %w", productID, err)
	}

	query := `
		INSERT INTO product_availability (product_id, rules, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (product_id) DO UPDATE SET
			rules = excluded.rules,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		productID.String(),
		string(raw),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
