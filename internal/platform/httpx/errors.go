package httpx

import (
	"errors"
	"net/http"

	"github.com/qrserve/qrserve/internal/shared"
)

// RespondError maps domain errors onto the API error envelope.
//
// Authentication failures stay generic on purpose: the response never says
// whether the token was missing, malformed or expired. Not-found responses
// are identical whether the entity lives in another tenant or nowhere.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		Error(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, shared.ErrPermissionDenied):
		Error(w, http.StatusForbidden, "Permission denied")
	case errors.Is(err, shared.ErrNoRestaurantScope):
		Error(w, http.StatusBadRequest, "Restaurant scope required", "no restaurant is linked to this account")
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "Not found")
	case errors.Is(err, shared.ErrDuplicate):
		Error(w, http.StatusConflict, "Already exists")
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
