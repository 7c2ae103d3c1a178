package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrserve/qrserve/internal/shared"
)

// Store defines persistence operations for roles and permissions.
type Store interface {
	ListPermissions(ctx context.Context) ([]Permission, error)
	UpsertPermission(ctx context.Context, key, category, description string) (Permission, error)
	ListRoles(ctx context.Context, restaurantID *int64) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name, description string, restaurantID *int64) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
	AttachPermission(ctx context.Context, roleID, permissionID int64) error
	DetachPermission(ctx context.Context, roleID, permissionID int64) error
	RolePermissionKeys(ctx context.Context, roleID int64) ([]string, error)
	AssignRoleToUser(ctx context.Context, userID, roleID int64) error
	RemoveRoleFromUser(ctx context.Context, userID, roleID int64) error
	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
	UserEffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// ListPermissions returns the catalog ordered by key.
func (s *PGStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, key, category, description, is_active FROM permissions ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Key, &p.Category, &p.Description, &p.IsActive); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// UpsertPermission inserts or refreshes a catalog entry. Keys are unique;
// repeating the call leaves exactly one row.
func (s *PGStore) UpsertPermission(ctx context.Context, key, category, description string) (Permission, error) {
	var p Permission
	err := s.pool.QueryRow(ctx,
		`INSERT INTO permissions (key, category, description, is_active)
		 VALUES ($1, $2, $3, TRUE)
		 ON CONFLICT (key) DO UPDATE SET category = EXCLUDED.category, description = EXCLUDED.description
		 RETURNING id, key, category, description, is_active`,
		strings.TrimSpace(key), strings.TrimSpace(category), strings.TrimSpace(description),
	).Scan(&p.ID, &p.Key, &p.Category, &p.Description, &p.IsActive)
	return p, err
}

// ListRoles returns roles visible to the given tenant: its own roles plus
// platform-wide templates. A nil restaurantID lists platform-wide roles only.
func (s *PGStore) ListRoles(ctx context.Context, restaurantID *int64) ([]Role, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, restaurant_id, created_at, updated_at
		 FROM roles
		 WHERE restaurant_id IS NOT DISTINCT FROM $1 OR restaurant_id IS NULL
		 ORDER BY name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.RestaurantID, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole fetches a role by ID.
func (s *PGStore) GetRole(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, restaurant_id, created_at, updated_at FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Name, &role.Description, &role.RestaurantID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// CreateRole inserts a new role.
func (s *PGStore) CreateRole(ctx context.Context, name, description string, restaurantID *int64) (Role, error) {
	var role Role
	err := s.pool.QueryRow(ctx,
		`INSERT INTO roles (name, description, restaurant_id, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 ON CONFLICT (name, restaurant_id) DO UPDATE SET description = EXCLUDED.description, updated_at = NOW()
		 RETURNING id, name, description, restaurant_id, created_at, updated_at`,
		name, description, restaurantID,
	).Scan(&role.ID, &role.Name, &role.Description, &role.RestaurantID, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

// DeleteRole removes a role by ID. Returns ErrNotFound if nothing was deleted.
func (s *PGStore) DeleteRole(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AttachPermission associates a permission with a role. Duplicate pairs are
// a no-op (upsert semantics).
func (s *PGStore) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (role_id, permission_id) DO NOTHING`,
		roleID, permissionID)
	return err
}

// DetachPermission removes a role-permission association.
func (s *PGStore) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	return err
}

// RolePermissionKeys returns the permission keys attached to a role.
func (s *PGStore) RolePermissionKeys(ctx context.Context, roleID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.key FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1 ORDER BY p.key`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// AssignRoleToUser links a user to a role, idempotently.
func (s *PGStore) AssignRoleToUser(ctx context.Context, userID, roleID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, role_id) DO NOTHING`,
		userID, roleID)
	return err
}

// RemoveRoleFromUser removes a role from a user.
func (s *PGStore) RemoveRoleFromUser(ctx context.Context, userID, roleID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

// UserRoleNames returns the names of all roles held by a user.
func (s *PGStore) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1 ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// UserEffectivePermissions returns the deduplicated union of permission keys
// across every role the user holds.
func (s *PGStore) UserEffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT p.key FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 JOIN user_roles ur ON ur.role_id = rp.role_id
		 WHERE ur.user_id = $1 AND p.is_active
		 ORDER BY p.key`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ Store = (*PGStore)(nil)
