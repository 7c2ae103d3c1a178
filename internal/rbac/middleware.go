package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/shared"
)

// Middleware wires authentication and authorization for HTTP handlers.
//
// Identify runs once per request, before any protected handler body:
// validate the session token, build the principal, resolve the permission
// union, attach the tenant context. RequireAny/RequireAll are the gates that
// turn an authorization decision into a terminal 401/403 — no other code
// path is permitted to do that.
type Middleware struct {
	Validator *auth.Validator
	Service   *Service
	Logger    *slog.Logger
}

// Identify resolves the request identity and stores it in the context.
// Requests without a valid token pass through unauthenticated; the gates
// reject them later if the route is protected.
func (m Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			next.ServeHTTP(w, r)
			return
		}
		principal, ok := m.Validator.Validate(r.Context(), sess.User())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		tc, err := m.Service.Resolve(r.Context(), principal)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("resolve permissions", slog.Int64("user_id", principal.UserID), slog.Any("error", err))
			}
			httpx.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), tc)))
	})
}

// RequireAny ensures the caller holds at least one of the required
// permissions. Unauthenticated callers get 401 with a generic message;
// authenticated callers lacking every key get 403 naming the requirement.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			tc := IdentityFromContext(r.Context())
			if tc == nil {
				httpx.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			for _, p := range normalized {
				if tc.Has(p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Error(w, http.StatusForbidden, "Permission denied", strings.Join(normalized, ", "))
		})
	}
}

// RequireAll ensures the caller holds every required permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			tc := IdentityFromContext(r.Context())
			if tc == nil {
				httpx.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			for _, p := range normalized {
				if !tc.Has(p) {
					httpx.Error(w, http.StatusForbidden, "Permission denied", p)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize is the in-handler counterpart of RequireAny for routes whose
// required permission depends on the request body (e.g. the target state of
// a transition). It writes the same terminal 401/403 responses as the route
// gates and reports whether the request may proceed, so the conversion of an
// authorization decision into a response never leaves this package.
func (m Middleware) Authorize(w http.ResponseWriter, r *http.Request, perm string) bool {
	tc := IdentityFromContext(r.Context())
	if tc == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required")
		return false
	}
	key := normalizeKey(perm)
	if !tc.Has(key) {
		httpx.Error(w, http.StatusForbidden, "Permission denied", key)
		return false
	}
	return true
}

// RequirePlatformAdmin guards platform-admin routes.
func (m Middleware) RequirePlatformAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := RequirePlatformAdmin(r.Context()); err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	ordered := make([]string, 0, len(perms))
	for _, p := range perms {
		p = normalizeKey(p)
		if p == "" {
			continue
		}
		if _, ok := unique[p]; ok {
			continue
		}
		unique[p] = struct{}{}
		ordered = append(ordered, p)
	}
	return ordered
}
