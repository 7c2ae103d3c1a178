package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/qrserve/qrserve/internal/auth"
)

// Service orchestrates role and permission resolution.
//
// Permissions are resolved from the store on every request and attached to
// the request context: there is no cross-request cache, so granting a
// RolePermission row takes effect on the caller's next request without
// re-login.
type Service struct {
	store Store
}

// NewService constructs a Service backed by the provided store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Resolve builds the request-scoped tenant context for a validated
// principal: the user's role names plus the union of permission keys across
// all of them.
func (s *Service) Resolve(ctx context.Context, principal auth.Principal) (*TenantContext, error) {
	roles, err := s.store.UserRoleNames(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	perms, err := s.store.UserEffectivePermissions(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return NewTenantContext(principal, roles, perms), nil
}

// EffectivePermissions returns deduplicated permission keys for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.store.UserEffectivePermissions(ctx, userID)
}

// ListPermissions returns the permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.store.ListPermissions(ctx)
}

// EnsurePermission upserts a catalog entry, deriving the category from the
// key. Malformed keys are rejected.
func (s *Service) EnsurePermission(ctx context.Context, key, description string) (Permission, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if !strings.Contains(key, ":") {
		return Permission{}, errors.New("rbac: permission key must be category:action")
	}
	return s.store.UpsertPermission(ctx, key, Category(key), description)
}

// ListRoles returns roles visible to the tenant.
func (s *Service) ListRoles(ctx context.Context, restaurantID *int64) ([]Role, error) {
	return s.store.ListRoles(ctx, restaurantID)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.store.GetRole(ctx, id)
}

// EnsureRole upserts a role for a tenant (nil restaurantID for
// platform-wide roles).
func (s *Service) EnsureRole(ctx context.Context, name, description string, restaurantID *int64) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	return s.store.CreateRole(ctx, name, description, restaurantID)
}

// DeleteRole removes a role by ID.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.store.DeleteRole(ctx, id)
}

// RolePermissionKeys returns the keys currently attached to a role.
func (s *Service) RolePermissionKeys(ctx context.Context, roleID int64) ([]string, error) {
	return s.store.RolePermissionKeys(ctx, roleID)
}

// SetRolePermissions replaces the permission set of a role: attaches keys
// not yet present, detaches keys no longer wanted. Attach is idempotent, so
// a concurrent duplicate leaves exactly one association.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	current, err := s.store.ListPermissions(ctx)
	if err != nil {
		return err
	}
	attached := make(map[int64]struct{})
	keys, err := s.store.RolePermissionKeys(ctx, roleID)
	if err != nil {
		return err
	}
	byKey := make(map[string]int64, len(current))
	for _, p := range current {
		byKey[p.Key] = p.ID
	}
	for _, k := range keys {
		if id, ok := byKey[k]; ok {
			attached[id] = struct{}{}
		}
	}

	keep := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		keep[id] = struct{}{}
		if _, ok := attached[id]; !ok {
			if err := s.store.AttachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	for id := range attached {
		if _, ok := keep[id]; !ok {
			if err := s.store.DetachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// AttachPermission adds one permission to a role, idempotently.
func (s *Service) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	return s.store.AttachPermission(ctx, roleID, permissionID)
}

// AssignRole assigns a role to the given user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	return s.store.AssignRoleToUser(ctx, userID, roleID)
}

// RemoveRole removes a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	return s.store.RemoveRoleFromUser(ctx, userID, roleID)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
