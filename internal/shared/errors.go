package shared

import "errors"

var (
	// ErrNotFound indicates the resource does not exist within the caller's scope.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates a missing, malformed or expired session token.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrPermissionDenied indicates the caller lacks a required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNoRestaurantScope indicates an authenticated account with no linked restaurant.
	ErrNoRestaurantScope = errors.New("restaurant scope required")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates bad request input.
	ErrValidation = errors.New("validation failed")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage returns a message that can be shown to API callers without
// leaking lower-layer detail. Unknown errors collapse to a generic message.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, ErrNoRestaurantScope):
		return "No restaurant is linked to this account"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrDuplicate):
		return "Already exists"
	case errors.Is(err, ErrValidation):
		return "Invalid input"
	default:
		return "Something went wrong"
	}
}
