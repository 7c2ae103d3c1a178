package menu

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// RepositoryPort defines data access for the menu.
type RepositoryPort interface {
	ListCategories(ctx context.Context, scope rbac.TenantScope) ([]Category, error)
	CreateCategory(ctx context.Context, scope rbac.TenantScope, name string, position int) (*Category, error)
	ListItems(ctx context.Context, scope rbac.TenantScope) ([]Item, error)
	GetItem(ctx context.Context, scope rbac.TenantScope, id int64) (*Item, error)
	CreateItem(ctx context.Context, scope rbac.TenantScope, item Item) (*Item, error)
	UpdateItem(ctx context.Context, scope rbac.TenantScope, id int64, item Item) (*Item, error)
	SetAvailability(ctx context.Context, scope rbac.TenantScope, id int64, available bool) error
	AvailableItems(ctx context.Context, restaurantID int64) ([]Item, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, restaurant_id, category_id, name, description, price_cents, is_available, created_at, updated_at`

// ListCategories returns menu categories ordered for display.
func (r *Repository) ListCategories(ctx context.Context, scope rbac.TenantScope) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, restaurant_id, name, position FROM menu_categories WHERE restaurant_id = $1 ORDER BY position, name`,
		scope.RestaurantID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Position); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, scope rbac.TenantScope, name string, position int) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO menu_categories (restaurant_id, name, position) VALUES ($1, $2, $3)
		 RETURNING id, restaurant_id, name, position`,
		scope.RestaurantID(), name, position,
	).Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Position)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListItems returns all items of the scoped restaurant.
func (r *Repository) ListItems(ctx context.Context, scope rbac.TenantScope) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM menu_items WHERE restaurant_id = $1 ORDER BY name`,
		scope.RestaurantID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// GetItem fetches one item within the tenant scope.
func (r *Repository) GetItem(ctx context.Context, scope rbac.TenantScope, id int64) (*Item, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM menu_items WHERE id = $1 AND restaurant_id = $2`,
		id, scope.RestaurantID())
	return scanItem(row)
}

// CreateItem inserts an item.
func (r *Repository) CreateItem(ctx context.Context, scope rbac.TenantScope, item Item) (*Item, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO menu_items (restaurant_id, category_id, name, description, price_cents, is_available, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING `+itemColumns,
		scope.RestaurantID(), item.CategoryID, item.Name, item.Description, item.PriceCents, item.IsAvailable)
	return scanItem(row)
}

// UpdateItem modifies an item within the tenant scope.
func (r *Repository) UpdateItem(ctx context.Context, scope rbac.TenantScope, id int64, item Item) (*Item, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE menu_items SET category_id = $3, name = $4, description = $5, price_cents = $6, is_available = $7, updated_at = NOW()
		 WHERE id = $1 AND restaurant_id = $2
		 RETURNING `+itemColumns,
		id, scope.RestaurantID(), item.CategoryID, item.Name, item.Description, item.PriceCents, item.IsAvailable)
	return scanItem(row)
}

// SetAvailability toggles an item's availability.
func (r *Repository) SetAvailability(ctx context.Context, scope rbac.TenantScope, id int64, available bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE menu_items SET is_available = $3, updated_at = NOW() WHERE id = $1 AND restaurant_id = $2`,
		id, scope.RestaurantID(), available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AvailableItems returns the customer-facing menu of a restaurant. This is
// the one unscoped read in the package: the menu a table QR code points at
// is public by design.
func (r *Repository) AvailableItems(ctx context.Context, restaurantID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM menu_items WHERE restaurant_id = $1 AND is_available ORDER BY name`,
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.RestaurantID, &it.CategoryID, &it.Name, &it.Description, &it.PriceCents, &it.IsAvailable, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.RestaurantID, &it.CategoryID, &it.Name, &it.Description, &it.PriceCents, &it.IsAvailable, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

var _ RepositoryPort = (*Repository)(nil)
