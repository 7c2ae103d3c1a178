package auth

import (
	"context"
	"strconv"
	"strings"
)

// Validator resolves a session-bound user ID into a Principal.
//
// Every invalid path yields (zero, false): a missing token, a token whose
// Redis entry expired, a session with no user, an unparseable user ID and a
// deactivated account are indistinguishable to the caller. Callers issue the
// 401; the validator never does, and it never panics.
//
// A user without a linked restaurant still validates successfully. Whether a
// restaurant scope is required is a per-operation business rule, checked by
// the tenant guard, and fails with 400 rather than 401.
type Validator struct {
	service *Service
}

// NewValidator constructs a Validator.
func NewValidator(service *Service) *Validator {
	return &Validator{service: service}
}

// Validate resolves the user ID stored in a session into a Principal.
// The raw value comes from Session.User(); an empty or malformed value is
// simply an unauthenticated request.
func (v *Validator) Validate(ctx context.Context, rawUserID string) (Principal, bool) {
	raw := strings.TrimSpace(rawUserID)
	if raw == "" {
		return Principal{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Principal{}, false
	}
	user, err := v.service.Lookup(ctx, id)
	if err != nil {
		return Principal{}, false
	}
	return user.Principal(), true
}
