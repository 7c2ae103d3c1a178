package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/shared"
	_ "github.com/qrserve/qrserve/testing"
)

type stubRepo struct {
	byID map[int64]*auth.User
	err  error
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrInvalidCredentials
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error { return nil }

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newValidator(repo auth.Repository) *auth.Validator {
	return auth.NewValidator(auth.NewService(repo))
}

func TestValidateResolvesActiveUser(t *testing.T) {
	restaurantID := int64(12)
	v := newValidator(&stubRepo{byID: map[int64]*auth.User{
		4: {ID: 4, Email: "owner@test.local", Type: auth.TypeOwner, RestaurantID: &restaurantID, IsActive: true},
	}})

	principal, ok := v.Validate(context.Background(), "4")
	if !ok {
		t.Fatalf("expected valid principal")
	}
	if principal.UserID != 4 || principal.Type != auth.TypeOwner {
		t.Fatalf("unexpected principal %+v", principal)
	}
	if principal.RestaurantID == nil || *principal.RestaurantID != 12 {
		t.Fatalf("expected restaurant binding on principal")
	}
}

func TestValidateRejectsMalformedInput(t *testing.T) {
	v := newValidator(&stubRepo{})
	for _, raw := range []string{"", "   ", "abc", "4x", "9999999999999999999999"} {
		if _, ok := v.Validate(context.Background(), raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestValidateRejectsUnknownAndInactiveUsers(t *testing.T) {
	v := newValidator(&stubRepo{byID: map[int64]*auth.User{
		7: {ID: 7, Email: "off@test.local", Type: auth.TypeStaff, IsActive: false},
	}})

	if _, ok := v.Validate(context.Background(), "1"); ok {
		t.Fatalf("unknown user must not validate")
	}
	if _, ok := v.Validate(context.Background(), "7"); ok {
		t.Fatalf("deactivated user must not validate")
	}
}

func TestValidateNeverSurfacesStoreErrors(t *testing.T) {
	v := newValidator(&stubRepo{err: errors.New("connection refused")})
	if _, ok := v.Validate(context.Background(), "4"); ok {
		t.Fatalf("store failure must read as invalid, not panic or succeed")
	}
}

func TestValidateAllowsUserWithoutRestaurant(t *testing.T) {
	v := newValidator(&stubRepo{byID: map[int64]*auth.User{
		2: {ID: 2, Email: "admin@test.local", Type: auth.TypePlatformAdmin, IsActive: true},
	}})
	principal, ok := v.Validate(context.Background(), "2")
	if !ok {
		t.Fatalf("platform admin without restaurant must validate")
	}
	if principal.RestaurantID != nil {
		t.Fatalf("expected nil restaurant for platform admin")
	}
}
