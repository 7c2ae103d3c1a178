package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Member is a staff account plus the names of its roles at the restaurant.
type Member struct {
	auth.User
	RoleNames []string
}

// RepositoryPort defines data access for staff accounts.
type RepositoryPort interface {
	List(ctx context.Context, scope rbac.TenantScope) ([]Member, error)
	Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Member, error)
	Create(ctx context.Context, scope rbac.TenantScope, u auth.User) (*auth.User, error)
	SetActive(ctx context.Context, scope rbac.TenantScope, id int64, active bool) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const memberColumns = `u.id, u.email, u.first_name, u.last_name, u.type, u.restaurant_id, u.is_active, u.created_at, u.updated_at`

// List returns staff members of the scoped restaurant with their role names.
func (r *Repository) List(ctx context.Context, scope rbac.TenantScope) ([]Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+`, COALESCE(array_agg(ro.name) FILTER (WHERE ro.name IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles ro ON ro.id = ur.role_id
		 WHERE u.restaurant_id = $1 AND u.type = $2
		 GROUP BY u.id
		 ORDER BY u.last_name, u.first_name`,
		scope.RestaurantID(), auth.TypeStaff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		var m Member
		if err := scanMember(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Get fetches one staff member within the tenant scope.
func (r *Repository) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Member, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+memberColumns+`, COALESCE(array_agg(ro.name) FILTER (WHERE ro.name IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles ro ON ro.id = ur.role_id
		 WHERE u.id = $1 AND u.restaurant_id = $2 AND u.type = $3
		 GROUP BY u.id`,
		id, scope.RestaurantID(), auth.TypeStaff)
	var m Member
	if err := scanMember(row, &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a staff account bound to the scoped restaurant.
func (r *Repository) Create(ctx context.Context, scope rbac.TenantScope, u auth.User) (*auth.User, error) {
	restaurantID := scope.RestaurantID()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, type, restaurant_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		 RETURNING id, is_active, created_at, updated_at`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, auth.TypeStaff, restaurantID,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	u.Type = auth.TypeStaff
	u.RestaurantID = &restaurantID
	return &u, nil
}

// SetActive enables or disables a staff account. Deactivation invalidates
// the account on the next token validation.
func (r *Repository) SetActive(ctx context.Context, scope rbac.TenantScope, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $3, updated_at = NOW()
		 WHERE id = $1 AND restaurant_id = $2 AND type = $4`,
		id, scope.RestaurantID(), active, auth.TypeStaff)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanMember(row pgx.Row, m *Member) error {
	return row.Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.Type, &m.RestaurantID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt, &m.RoleNames)
}

var _ RepositoryPort = (*Repository)(nil)
