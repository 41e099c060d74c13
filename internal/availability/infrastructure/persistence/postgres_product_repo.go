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

// PostgresProductRepository implements domain.ProductRepository using
// PostgreSQL.
type PostgresProductRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProductRepository creates a new PostgreSQL product repository.
func NewPostgresProductRepository(pool *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool}
}

// Save persists a product to the database.
func (r *PostgresProductRepository) Save(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, duration_unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			duration_unit = EXCLUDED.duration_unit,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		product.ID(),
		product.Name(),
		string(product.DurationUnit()),
		product.CreatedAt(),
		product.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a product by its ID.
func (r *PostgresProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT id, name, duration_unit, created_at, updated_at FROM products WHERE id = $1`

	var (
		productID uuid.UUID
		name      string
		unit      string
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&productID, &name, &unit, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return domain.RehydrateProduct(productID, name, domain.DurationUnit(unit), createdAt, updatedAt), nil
}

// Availability returns the product's ordered rule collection. A product
// without a stored collection has no rules.
func (r *PostgresProductRepository) Availability(ctx context.Context, productID uuid.UUID) ([]domain.Rule, error) {
	query := `SELECT rules FROM product_availability WHERE product_id = $1`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, productID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rules []domain.Rule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("decode rules for product %s: %w", productID, err)
	}
	return rules, nil
}

// SaveAvailability replaces the product's rule collection.
func (r *PostgresProductRepository) SaveAvailability(ctx context.Context, productID uuid.UUID, rules []domain.Rule) error {
	if rules == nil {
		rules = []domain.Rule{}
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rules for product %s: %w", productID, err)
	}

	query := `
		INSERT INTO product_availability (product_id, rules, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (product_id) DO UPDATE SET
			rules = EXCLUDED.rules,
			updated_at = NOW()
	`
	_, err = r.pool.Exec(ctx, query, productID, raw)
	return err
}
