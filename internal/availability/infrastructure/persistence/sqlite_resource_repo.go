package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/google/uuid"
)

// SQLiteResourceRepository implements domain.ResourceRepository using
// SQLite.
type SQLiteResourceRepository struct {
	db *sql.DB
}

// NewSQLiteResourceRepository creates a new SQLite resource repository.
func NewSQLiteResourceRepository(db *sql.DB) *SQLiteResourceRepository {
	return &SQLiteResourceRepository{db: db}
}

// Save persists a resource to the database.
func (r *SQLiteResourceRepository) Save(ctx context.Context, resource *domain.Resource) error {
	query := `
		INSERT INTO resources (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		resource.ID().String(),
		resource.Name(),
		resource.CreatedAt().Format(time.RFC3339),
		resource.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByProduct returns the resources a product is attached to.
func (r *SQLiteResourceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Resource, error) {
	query := `
		SELECT r.id, r.name, r.created_at, r.updated_at
		FROM resources r
		JOIN resource_products rp ON rp.resource_id = r.id
		WHERE rp.product_id = ?
		ORDER BY r.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, productID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []*domain.Resource
	for rows.Next() {
		var (
			rawID     string
			name      string
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&rawID, &name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse resource id: %w", err)
		}
		created, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		updated, err := parseTime(updatedAt)
		if err != nil {
			return nil, err
		}
		resources = append(resources, domain.RehydrateResource(id, name, created, updated))
	}
	return resources, rows.Err()
}

// ProductsForResource returns the IDs of all products attached to a
// resource, ordered by the relationship's sort key.
func (r *SQLiteResourceRepository) ProductsForResource(ctx context.Context, resourceID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT product_id
		FROM resource_products
		WHERE resource_id = ?
		ORDER BY sort_order, product_id
	`

	rows, err := r.db.QueryContext(ctx, query, resourceID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Attach links a product to a resource at the given sort position.
func (r *SQLiteResourceRepository) Attach(ctx context.Context, resourceID, productID uuid.UUID, sortOrder int) error {
	query := `
		INSERT INTO resource_products (resource_id, product_id, sort_order)
		VALUES (?, ?, ?)
		ON CONFLICT (resource_id, product_id) DO UPDATE SET
			sort_order = excluded.sort_order
	`
	_, err := r.db.ExecContext(ctx, query, resourceID.String(), productID.String(), sortOrder)
	return err
}
