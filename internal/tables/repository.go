package tables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// RepositoryPort defines data access for dining tables.
type RepositoryPort interface {
	List(ctx context.Context, scope rbac.TenantScope) ([]Table, error)
	Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Table, error)
	Create(ctx context.Context, scope rbac.TenantScope, label, qrToken string, seats int) (*Table, error)
	Update(ctx context.Context, scope rbac.TenantScope, id int64, label string, seats int, isActive bool) (*Table, error)
	Delete(ctx context.Context, scope rbac.TenantScope, id int64) error
	FindByQRToken(ctx context.Context, token string) (*Table, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tableColumns = `id, restaurant_id, label, qr_token, seats, is_active, created_at`

// List returns all tables of the scoped restaurant.
func (r *Repository) List(ctx context.Context, scope rbac.TenantScope) ([]Table, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tableColumns+` FROM dining_tables WHERE restaurant_id = $1 ORDER BY label`,
		scope.RestaurantID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.QRToken, &t.Seats, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get fetches one table within the tenant scope. Tables of other tenants
// resolve as not found.
func (r *Repository) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Table, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM dining_tables WHERE id = $1 AND restaurant_id = $2`,
		id, scope.RestaurantID())
	return scanTable(row)
}

// Create inserts a new table.
func (r *Repository) Create(ctx context.Context, scope rbac.TenantScope, label, qrToken string, seats int) (*Table, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO dining_tables (restaurant_id, label, qr_token, seats, is_active, created_at)
		 VALUES ($1, $2, $3, $4, TRUE, NOW())
		 RETURNING `+tableColumns,
		scope.RestaurantID(), label, qrToken, seats)
	return scanTable(row)
}

// Update modifies a table within the tenant scope.
func (r *Repository) Update(ctx context.Context, scope rbac.TenantScope, id int64, label string, seats int, isActive bool) (*Table, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE dining_tables SET label = $3, seats = $4, is_active = $5
		 WHERE id = $1 AND restaurant_id = $2
		 RETURNING `+tableColumns,
		id, scope.RestaurantID(), label, seats, isActive)
	return scanTable(row)
}

// Delete removes a table within the tenant scope.
func (r *Repository) Delete(ctx context.Context, scope rbac.TenantScope, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM dining_tables WHERE id = $1 AND restaurant_id = $2`,
		id, scope.RestaurantID())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByQRToken resolves a scanned QR token to its table. Only active tables
// of active restaurants are reachable from the public surface.
func (r *Repository) FindByQRToken(ctx context.Context, token string) (*Table, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT t.id, t.restaurant_id, t.label, t.qr_token, t.seats, t.is_active, t.created_at
		 FROM dining_tables t
		 JOIN restaurants rest ON rest.id = t.restaurant_id
		 WHERE t.qr_token = $1 AND t.is_active AND rest.is_active`,
		token)
	return scanTable(row)
}

func scanTable(row pgx.Row) (*Table, error) {
	var t Table
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.QRToken, &t.Seats, &t.IsActive, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

var _ RepositoryPort = (*Repository)(nil)
