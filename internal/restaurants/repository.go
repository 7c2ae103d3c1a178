package restaurants

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// RepositoryPort defines data access for the tenant's own restaurant row.
type RepositoryPort interface {
	Get(ctx context.Context, scope rbac.TenantScope) (*Restaurant, error)
	UpdateSettings(ctx context.Context, scope rbac.TenantScope, name, slug string) (*Restaurant, error)
	CountOpenOrders(ctx context.Context, scope rbac.TenantScope) (int64, error)
	CountActiveTables(ctx context.Context, scope rbac.TenantScope) (int64, error)
	RevenueSince(ctx context.Context, scope rbac.TenantScope, since time.Time) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the restaurant the scope is bound to.
func (r *Repository) Get(ctx context.Context, scope rbac.TenantScope) (*Restaurant, error) {
	var rest Restaurant
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, owner_id, is_active, created_at, updated_at FROM restaurants WHERE id = $1`,
		scope.RestaurantID(),
	).Scan(&rest.ID, &rest.Name, &rest.Slug, &rest.OwnerID, &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rest, nil
}

// UpdateSettings updates mutable restaurant fields.
func (r *Repository) UpdateSettings(ctx context.Context, scope rbac.TenantScope, name, slug string) (*Restaurant, error) {
	var rest Restaurant
	err := r.pool.QueryRow(ctx,
		`UPDATE restaurants SET name = $2, slug = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, name, slug, owner_id, is_active, created_at, updated_at`,
		scope.RestaurantID(), name, slug,
	).Scan(&rest.ID, &rest.Name, &rest.Slug, &rest.OwnerID, &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rest, nil
}

// CountOpenOrders counts orders not yet served or cancelled.
func (r *Repository) CountOpenOrders(ctx context.Context, scope rbac.TenantScope) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE restaurant_id = $1 AND status NOT IN ('served', 'cancelled')`,
		scope.RestaurantID()).Scan(&n)
	return n, err
}

// CountActiveTables counts active dining tables.
func (r *Repository) CountActiveTables(ctx context.Context, scope rbac.TenantScope) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM dining_tables WHERE restaurant_id = $1 AND is_active`,
		scope.RestaurantID()).Scan(&n)
	return n, err
}

// RevenueSince sums recorded payments since the given time.
func (r *Repository) RevenueSince(ctx context.Context, scope rbac.TenantScope, since time.Time) (int64, error) {
	var cents int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE restaurant_id = $1 AND recorded_at >= $2`,
		scope.RestaurantID(), since).Scan(&cents)
	return cents, err
}

var _ RepositoryPort = (*Repository)(nil)
