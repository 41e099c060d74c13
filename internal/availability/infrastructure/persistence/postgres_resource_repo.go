package persistence

import (
	"context"
	"time"

	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresResourceRepository implements domain.ResourceRepository using
// PostgreSQL.
type PostgresResourceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresResourceRepository creates a new PostgreSQL resource repository.
func NewPostgresResourceRepository(pool *pgxpool.Pool) *PostgresResourceRepository {
	return &PostgresResourceRepository{pool: pool}
}

// Save persists a resource to the database.
func (r *PostgresResourceRepository) Save(ctx context.Context, resource *domain.Resource) error {
	query := `
		INSERT INTO resources (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		resource.ID(),
		resource.Name(),
		resource.CreatedAt(),
		resource.UpdatedAt(),
	)
	return err
}

// FindByProduct returns the resources a product is attached to.
func (r *PostgresResourceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Resource, error) {
	query := `
		SELECT r.id, r.name, r.created_at, r.updated_at
		FROM resources r
		JOIN resource_products rp ON rp.resource_id = r.id
		WHERE rp.product_id = $1
		ORDER BY r.created_at
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []*domain.Resource
	for rows.Next() {
		var (
			id        uuid.UUID
			name      string
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, domain.RehydrateResource(id, name, createdAt, updatedAt))
	}
	return resources, rows.Err()
}

// ProductsForResource returns the IDs of all products attached to a
// resource, ordered by the relationship's sort key.
func (r *PostgresResourceRepository) ProductsForResource(ctx context.Context, resourceID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT product_id
		FROM resource_products
		WHERE resource_id = $1
		ORDER BY sort_order, product_id
	`

	rows, err := r.pool.Query(ctx, query, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Attach links a product to a resource at the given sort position.
func (r *PostgresResourceRepository) Attach(ctx context.Context, resourceID, productID uuid.UUID, sortOrder int) error {
	query := `
		INSERT INTO resource_products (resource_id, product_id, sort_order)
		VALUES ($1, $2, $3)
		ON CONFLICT (resource_id, product_id) DO UPDATE SET
			sort_order = EXCLUDED.sort_order
	`
	_, err := r.pool.Exec(ctx, query, resourceID, productID, sortOrder)
	return err
}
