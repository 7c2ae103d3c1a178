package admin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Owner is the restaurant owner's contact card.
type Owner struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
}

// Subscription is the billing state of a restaurant.
type Subscription struct {
	Status   string
	PlanName string
}

// Entry is one row of the platform directory. Only account metadata appears
// here; orders, menus, staff details and revenue are business data and stay
// out of the platform surface entirely.
type Entry struct {
	ID           int64
	Name         string
	Slug         string
	IsActive     bool
	CreatedAt    time.Time
	Owner        Owner
	Subscription Subscription
}

// directoryColumns is the fixed allow-list of what the platform surface may
// read. New columns must be added here explicitly, anything not listed is
// unreachable from admin queries.
const directoryColumns = `
	r.id, r.name, r.slug, r.is_active, r.created_at,
	u.id, u.email, u.first_name, u.last_name,
	s.status, p.name`

// RepositoryPort defines data access for the platform directory.
type RepositoryPort interface {
	List(ctx context.Context, scope rbac.AdminScope, pg shared.Pagination) ([]Entry, int, error)
	Get(ctx context.Context, scope rbac.AdminScope, id int64) (*Entry, error)
	SetActive(ctx context.Context, scope rbac.AdminScope, id int64, active bool) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns the paginated restaurant directory.
func (r *Repository) List(ctx context.Context, scope rbac.AdminScope, pg shared.Pagination) ([]Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+directoryColumns+`
		 FROM restaurants r
		 JOIN users u ON u.id = r.owner_id
		 LEFT JOIN subscriptions s ON s.restaurant_id = r.id
		 LEFT JOIN plans p ON p.id = s.plan_id
		 ORDER BY r.created_at DESC
		 LIMIT $1 OFFSET $2`,
		pg.Limit(), pg.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := scanEntry(rows, &e); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Get fetches one directory entry.
func (r *Repository) Get(ctx context.Context, scope rbac.AdminScope, id int64) (*Entry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+directoryColumns+`
		 FROM restaurants r
		 JOIN users u ON u.id = r.owner_id
		 LEFT JOIN subscriptions s ON s.restaurant_id = r.id
		 LEFT JOIN plans p ON p.id = s.plan_id
		 WHERE r.id = $1`,
		id)
	var e Entry
	if err := scanEntry(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// SetActive suspends or reinstates a restaurant.
func (r *Repository) SetActive(ctx context.Context, scope rbac.AdminScope, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE restaurants SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row, e *Entry) error {
	var status, plan *string
	if err := row.Scan(
		&e.ID, &e.Name, &e.Slug, &e.IsActive, &e.CreatedAt,
		&e.Owner.ID, &e.Owner.Email, &e.Owner.FirstName, &e.Owner.LastName,
		&status, &plan,
	); err != nil {
		return err
	}
	if status != nil {
		e.Subscription.Status = *status
	}
	if plan != nil {
		e.Subscription.PlanName = *plan
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
