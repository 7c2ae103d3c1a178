package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrserve/qrserve/internal/orders"
	"github.com/qrserve/qrserve/internal/platform/db"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// RepositoryPort defines data access for payments.
type RepositoryPort interface {
	Record(ctx context.Context, scope rbac.TenantScope, orderID, recordedBy int64, method Method) (*Payment, error)
	Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Payment, error)
	List(ctx context.Context, scope rbac.TenantScope, p shared.Pagination) ([]Payment, error)
	SetReceiptPath(ctx context.Context, id int64, path string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const paymentColumns = `id, restaurant_id, order_id, amount_cents, method, recorded_by, COALESCE(receipt_path, ''), recorded_at`

// Record settles an order in one transaction. The order must be served and
// not already paid; the amount is taken from the order total, never from
// client input. A second payment for the same order fails on the unique
// order_id constraint.
func (r *Repository) Record(ctx context.Context, scope rbac.TenantScope, orderID, recordedBy int64, method Method) (*Payment, error) {
	var out *Payment
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var total int64
		err := tx.QueryRow(ctx,
			`SELECT total_cents FROM orders WHERE id = $1 AND restaurant_id = $2 AND status = $3 FOR UPDATE`,
			orderID, scope.RestaurantID(), orders.StatusServed,
		).Scan(&total)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrValidation
			}
			return fmt.Errorf("payments: lock order: %w", err)
		}

		var p Payment
		err = tx.QueryRow(ctx,
			`INSERT INTO payments (restaurant_id, order_id, amount_cents, method, recorded_by, recorded_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())
			 RETURNING `+paymentColumns,
			scope.RestaurantID(), orderID, total, method, recordedBy,
		).Scan(&p.ID, &p.RestaurantID, &p.OrderID, &p.AmountCents, &p.Method, &p.RecordedBy, &p.ReceiptPath, &p.RecordedAt)
		if err != nil {
			if shared.IsUniqueViolation(err) {
				return shared.ErrDuplicate
			}
			return fmt.Errorf("payments: insert: %w", err)
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one payment within the tenant scope.
func (r *Repository) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Payment, error) {
	var p Payment
	err := r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 AND restaurant_id = $2`,
		id, scope.RestaurantID(),
	).Scan(&p.ID, &p.RestaurantID, &p.OrderID, &p.AmountCents, &p.Method, &p.RecordedBy, &p.ReceiptPath, &p.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns payments of the scoped restaurant, newest first.
func (r *Repository) List(ctx context.Context, scope rbac.TenantScope, p shared.Pagination) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE restaurant_id = $1
		 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`,
		scope.RestaurantID(), p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var pay Payment
		if err := rows.Scan(&pay.ID, &pay.RestaurantID, &pay.OrderID, &pay.AmountCents, &pay.Method, &pay.RecordedBy, &pay.ReceiptPath, &pay.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, pay)
	}
	return out, rows.Err()
}

// SetReceiptPath stores where the rendered receipt PDF landed. Called by the
// background worker, hence no tenant scope.
func (r *Repository) SetReceiptPath(ctx context.Context, id int64, path string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET receipt_path = $2 WHERE id = $1`, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReceiptData loads what the receipt renderer needs for one payment.
func (r *Repository) ReceiptData(ctx context.Context, paymentID int64) (*Payment, *orders.Order, string, error) {
	var p Payment
	var restaurantName string
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.restaurant_id, p.order_id, p.amount_cents, p.method, p.recorded_by, COALESCE(p.receipt_path, ''), p.recorded_at, rest.name
		 FROM payments p JOIN restaurants rest ON rest.id = p.restaurant_id
		 WHERE p.id = $1`,
		paymentID,
	).Scan(&p.ID, &p.RestaurantID, &p.OrderID, &p.AmountCents, &p.Method, &p.RecordedBy, &p.ReceiptPath, &p.RecordedAt, &restaurantName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, "", shared.ErrNotFound
		}
		return nil, nil, "", err
	}

	var o orders.Order
	err = r.pool.QueryRow(ctx,
		`SELECT o.id, o.restaurant_id, o.table_id, t.label, o.status, o.note, o.total_cents, o.placed_at, o.updated_at
		 FROM orders o JOIN dining_tables t ON t.id = o.table_id
		 WHERE o.id = $1`,
		p.OrderID,
	).Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.TableLabel, &o.Status, &o.Note, &o.TotalCents, &o.PlacedAt, &o.UpdatedAt)
	if err != nil {
		return nil, nil, "", err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, menu_item_id, name, quantity, unit_price_cents
		 FROM order_lines WHERE order_id = $1 ORDER BY id`,
		o.ID)
	if err != nil {
		return nil, nil, "", err
	}
	defer rows.Close()
	for rows.Next() {
		var l orders.Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Name, &l.Quantity, &l.UnitPriceCents); err != nil {
			return nil, nil, "", err
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, "", err
	}
	return &p, &o, restaurantName, nil
}

var _ RepositoryPort = (*Repository)(nil)
