package rbac

import (
	"context"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/shared"
)

// TenantScope is a capability proving the request passed the tenant guard.
// The field is unexported on purpose: repositories for business data take a
// TenantScope as their first argument after ctx, and only RequireTenant can
// mint one, so calling them ungated does not compile outside this package.
type TenantScope struct {
	restaurantID int64
}

// RestaurantID returns the tenant the scope is bound to.
func (s TenantScope) RestaurantID() int64 {
	return s.restaurantID
}

// AdminScope is the capability counterpart for platform-admin metadata
// access. It carries no restaurant: platform admins never query business
// data.
type AdminScope struct {
	userID int64
}

// UserID returns the platform admin that passed the guard.
func (s AdminScope) UserID() int64 {
	return s.userID
}

// RequireTenant resolves the caller's restaurant scope.
//
// Unauthenticated callers fail with ErrUnauthenticated (401). Authenticated
// callers with no resolvable restaurant — platform admins included — fail
// with ErrNoRestaurantScope (400): that is an account-setup problem, not a
// security violation.
func RequireTenant(ctx context.Context) (TenantScope, error) {
	tc := IdentityFromContext(ctx)
	if tc == nil {
		return TenantScope{}, shared.ErrUnauthenticated
	}
	if tc.Principal.Type == auth.TypePlatformAdmin || tc.Principal.RestaurantID == nil {
		return TenantScope{}, shared.ErrNoRestaurantScope
	}
	return TenantScope{restaurantID: *tc.Principal.RestaurantID}, nil
}

// RequirePlatformAdmin fails fast unless the principal type is
// platform-admin. Every platform-admin data-access function takes the
// returned AdminScope before executing any query.
func RequirePlatformAdmin(ctx context.Context) (AdminScope, error) {
	tc := IdentityFromContext(ctx)
	if tc == nil {
		return AdminScope{}, shared.ErrUnauthenticated
	}
	if tc.Principal.Type != auth.TypePlatformAdmin {
		return AdminScope{}, shared.ErrPermissionDenied
	}
	return AdminScope{userID: tc.Principal.UserID}, nil
}
