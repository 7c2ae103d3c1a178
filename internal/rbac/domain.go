package rbac

import (
	"time"

	"github.com/qrserve/qrserve/internal/auth"
)

// Role represents a named permission bundle. RestaurantID is nil for
// platform-wide roles and set for tenant-scoped ones.
type Role struct {
	ID           int64
	Name         string
	Description  string
	RestaurantID *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Permission is a global catalog entry. Keys are unique and belong to
// exactly one category (the substring before the colon).
type Permission struct {
	ID          int64
	Key         string
	Category    string
	Description string
	IsActive    bool
}

// Assignment ties a permission to a role. The pair is unique; attaching
// twice is an idempotent no-op.
type Assignment struct {
	RoleID       int64
	PermissionID int64
	CreatedAt    time.Time
}

// UserRole links a user to a role.
type UserRole struct {
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
}

// TenantContext is the resolved (principal, roles, permissions) triple for
// one request. It is owned by the request that created it and discarded at
// request end; permissions are resolved once and stable for the request.
type TenantContext struct {
	Principal auth.Principal
	Roles     []string
	perms     map[string]struct{}
}

// NewTenantContext builds the request identity from resolved roles and the
// union of their permission keys.
func NewTenantContext(principal auth.Principal, roles, permissions []string) *TenantContext {
	perms := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		perms[normalizeKey(p)] = struct{}{}
	}
	return &TenantContext{Principal: principal, Roles: roles, perms: perms}
}

// Has reports whether the resolved permission set contains the key.
func (tc *TenantContext) Has(key string) bool {
	if tc == nil {
		return false
	}
	_, ok := tc.perms[normalizeKey(key)]
	return ok
}

// Permissions returns a copy of the granted permission keys.
func (tc *TenantContext) Permissions() []string {
	if tc == nil {
		return nil
	}
	out := make([]string, 0, len(tc.perms))
	for p := range tc.perms {
		out = append(out, p)
	}
	return out
}
