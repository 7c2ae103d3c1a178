package rbac

import "context"

type identityContextKey struct{}

// ContextWithIdentity stores the resolved tenant context in ctx.
func ContextWithIdentity(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, identityContextKey{}, tc)
}

// IdentityFromContext extracts the tenant context, nil when unauthenticated.
func IdentityFromContext(ctx context.Context) *TenantContext {
	tc, _ := ctx.Value(identityContextKey{}).(*TenantContext)
	return tc
}
