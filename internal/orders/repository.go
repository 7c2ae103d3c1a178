package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrserve/qrserve/internal/platform/db"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// PlacedLine is the customer's requested quantity of one menu item.
type PlacedLine struct {
	MenuItemID int64
	Quantity   int
}

// RepositoryPort defines data access for orders.
type RepositoryPort interface {
	Place(ctx context.Context, restaurantID, tableID int64, note string, lines []PlacedLine) (*Order, error)
	Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Order, error)
	GetForTable(ctx context.Context, restaurantID, tableID, id int64) (*Order, error)
	List(ctx context.Context, scope rbac.TenantScope, statuses []Status, p shared.Pagination) ([]Order, error)
	Kitchen(ctx context.Context, scope rbac.TenantScope) ([]Order, error)
	UpdateStatus(ctx context.Context, scope rbac.TenantScope, id int64, from, to Status) (*Order, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `o.id, o.restaurant_id, o.table_id, t.label, o.status, o.note, o.total_cents, o.placed_at, o.updated_at`

// Place creates an order in a single transaction. Prices are read from the
// live menu inside the same transaction and frozen onto the order lines;
// an unavailable or foreign item fails the whole order.
func (r *Repository) Place(ctx context.Context, restaurantID, tableID int64, note string, lines []PlacedLine) (*Order, error) {
	var placed *Order
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var orderID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO orders (restaurant_id, table_id, status, note, total_cents, placed_at, updated_at)
			 VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
			 RETURNING id`,
			restaurantID, tableID, StatusPending, note,
		).Scan(&orderID); err != nil {
			return fmt.Errorf("orders: insert order: %w", err)
		}

		var total int64
		out := make([]Line, 0, len(lines))
		for _, pl := range lines {
			var line Line
			err := tx.QueryRow(ctx,
				`INSERT INTO order_lines (order_id, menu_item_id, name, quantity, unit_price_cents)
				 SELECT $1, mi.id, mi.name, $3, mi.price_cents
				 FROM menu_items mi
				 WHERE mi.id = $2 AND mi.restaurant_id = $4 AND mi.is_available
				 RETURNING id, order_id, menu_item_id, name, quantity, unit_price_cents`,
				orderID, pl.MenuItemID, pl.Quantity, restaurantID,
			).Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Name, &line.Quantity, &line.UnitPriceCents)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return shared.ErrValidation
				}
				return fmt.Errorf("orders: insert line: %w", err)
			}
			total += line.LineTotal()
			out = append(out, line)
		}

		var o Order
		if err := tx.QueryRow(ctx,
			`UPDATE orders o SET total_cents = $2
			 FROM dining_tables t
			 WHERE o.id = $1 AND t.id = o.table_id
			 RETURNING `+orderColumns,
			orderID, total,
		).Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.TableLabel, &o.Status, &o.Note, &o.TotalCents, &o.PlacedAt, &o.UpdatedAt); err != nil {
			return fmt.Errorf("orders: set total: %w", err)
		}
		o.Lines = out
		placed = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// Get fetches one order with its lines within the tenant scope.
func (r *Repository) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Order, error) {
	return r.fetch(ctx, id, scope.RestaurantID(), 0)
}

// GetForTable fetches an order for the public status page. The order must
// belong to both the restaurant and the table the QR token resolved to.
func (r *Repository) GetForTable(ctx context.Context, restaurantID, tableID, id int64) (*Order, error) {
	return r.fetch(ctx, id, restaurantID, tableID)
}

func (r *Repository) fetch(ctx context.Context, id, restaurantID, tableID int64) (*Order, error) {
	query := `SELECT ` + orderColumns + `
		 FROM orders o JOIN dining_tables t ON t.id = o.table_id
		 WHERE o.id = $1 AND o.restaurant_id = $2`
	args := []any{id, restaurantID}
	if tableID != 0 {
		query += ` AND o.table_id = $3`
		args = append(args, tableID)
	}
	var o Order
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&o.ID, &o.RestaurantID, &o.TableID, &o.TableLabel, &o.Status, &o.Note, &o.TotalCents, &o.PlacedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.lines(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

// List returns orders of the scoped restaurant, newest first, optionally
// filtered by status.
func (r *Repository) List(ctx context.Context, scope rbac.TenantScope, statuses []Status, p shared.Pagination) ([]Order, error) {
	query := `SELECT ` + orderColumns + `
		 FROM orders o JOIN dining_tables t ON t.id = o.table_id
		 WHERE o.restaurant_id = $1`
	args := []any{scope.RestaurantID()}
	if len(statuses) > 0 {
		args = append(args, statuses)
		query += fmt.Sprintf(` AND o.status = ANY($%d)`, len(args))
	}
	args = append(args, p.Limit(), p.Offset())
	query += fmt.Sprintf(` ORDER BY o.placed_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

// Kitchen returns the live board: confirmed, preparing and ready orders,
// oldest first so the kitchen works the queue in placement order.
func (r *Repository) Kitchen(ctx context.Context, scope rbac.TenantScope) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o JOIN dining_tables t ON t.id = o.table_id
		 WHERE o.restaurant_id = $1 AND o.status = ANY($2)
		 ORDER BY o.placed_at ASC`,
		scope.RestaurantID(), kitchenStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

// UpdateStatus advances an order from one state to another. The expected
// current state is part of the WHERE clause so concurrent updates lose
// cleanly instead of double-applying.
func (r *Repository) UpdateStatus(ctx context.Context, scope rbac.TenantScope, id int64, from, to Status) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx,
		`UPDATE orders o SET status = $4, updated_at = NOW()
		 FROM dining_tables t
		 WHERE o.id = $1 AND o.restaurant_id = $2 AND o.status = $3 AND t.id = o.table_id
		 RETURNING `+orderColumns,
		id, scope.RestaurantID(), from, to,
	).Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.TableLabel, &o.Status, &o.Note, &o.TotalCents, &o.PlacedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.lines(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

func (r *Repository) collect(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	var out []Order
	var ids []int64
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.TableLabel, &o.Status, &o.Note, &o.TotalCents, &o.PlacedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = lines[out[i].ID]
	}
	return out, nil
}

func (r *Repository) lines(ctx context.Context, orderIDs []int64) (map[int64][]Line, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, menu_item_id, name, quantity, unit_price_cents
		 FROM order_lines WHERE order_id = ANY($1) ORDER BY id`,
		orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]Line, len(orderIDs))
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Name, &l.Quantity, &l.UnitPriceCents); err != nil {
			return nil, err
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
