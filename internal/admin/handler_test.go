package admin_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qrserve/qrserve/internal/admin"
	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
	_ "github.com/qrserve/qrserve/testing"
)

type stubDirectory struct {
	entries []admin.Entry
	active  map[int64]bool
}

func (s *stubDirectory) List(ctx context.Context, scope rbac.AdminScope, pg shared.Pagination) ([]admin.Entry, int, error) {
	return s.entries, len(s.entries), nil
}

func (s *stubDirectory) Get(ctx context.Context, scope rbac.AdminScope, id int64) (*admin.Entry, error) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return &s.entries[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubDirectory) SetActive(ctx context.Context, scope rbac.AdminScope, id int64, active bool) error {
	if s.active == nil {
		s.active = make(map[int64]bool)
	}
	s.active[id] = active
	return nil
}

var _ admin.RepositoryPort = (*stubDirectory)(nil)

func directoryRouter(repo admin.RepositoryPort, principal auth.Principal) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := admin.NewHandler(logger, admin.NewService(repo, nil))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			tc := rbac.NewTenantContext(principal, nil, nil)
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithIdentity(req.Context(), tc)))
		})
	})
	handler.MountRoutes(r)
	return r
}

func sampleEntry() admin.Entry {
	return admin.Entry{
		ID:        3,
		Name:      "Demo Bistro",
		Slug:      "demo-bistro",
		IsActive:  true,
		CreatedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Owner:     admin.Owner{ID: 11, Email: "owner@demo.local", FirstName: "Dana", LastName: "Owner"},
		Subscription: admin.Subscription{
			Status:   "active",
			PlanName: "starter",
		},
	}
}

func TestDirectoryEntryExposesOnlyAccountMetadata(t *testing.T) {
	router := directoryRouter(&stubDirectory{entries: []admin.Entry{sampleEntry()}},
		auth.Principal{UserID: 1, Type: auth.TypePlatformAdmin})

	req := httptest.NewRequest(http.MethodGet, "/restaurants/3", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	allowed := map[string]struct{}{
		"id": {}, "name": {}, "slug": {}, "isActive": {},
		"createdAt": {}, "owner": {}, "subscription": {},
	}
	for key := range body {
		if _, ok := allowed[key]; !ok {
			t.Fatalf("directory entry leaks field %q", key)
		}
	}
	for _, forbidden := range []string{"orders", "menu", "staff", "revenue", "payments", "tables"} {
		if _, ok := body[forbidden]; ok {
			t.Fatalf("business data %q must never appear on the platform surface", forbidden)
		}
	}

	var owner map[string]json.RawMessage
	if err := json.Unmarshal(body["owner"], &owner); err != nil {
		t.Fatalf("decode owner: %v", err)
	}
	for key := range owner {
		switch key {
		case "id", "email", "firstName", "lastName":
		default:
			t.Fatalf("owner card leaks field %q", key)
		}
	}
}

func TestDirectoryRejectsTenantPrincipals(t *testing.T) {
	restaurantID := int64(3)
	router := directoryRouter(&stubDirectory{entries: []admin.Entry{sampleEntry()}},
		auth.Principal{UserID: 2, Type: auth.TypeOwner, RestaurantID: &restaurantID})

	req := httptest.NewRequest(http.MethodGet, "/restaurants", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant principal, got %d", res.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Permission denied" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func TestDirectoryListPaginates(t *testing.T) {
	router := directoryRouter(&stubDirectory{entries: []admin.Entry{sampleEntry()}},
		auth.Principal{UserID: 1, Type: auth.TypePlatformAdmin})

	req := httptest.NewRequest(http.MethodGet, "/restaurants?page=1&perPage=10", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body struct {
		Restaurants []json.RawMessage `json:"restaurants"`
		Pagination  json.RawMessage   `json:"pagination"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Restaurants) != 1 {
		t.Fatalf("expected 1 restaurant, got %d", len(body.Restaurants))
	}
	if len(body.Pagination) == 0 {
		t.Fatalf("expected pagination metadata")
	}
}

func TestDirectorySetActive(t *testing.T) {
	repo := &stubDirectory{entries: []admin.Entry{sampleEntry()}}
	router := directoryRouter(repo, auth.Principal{UserID: 1, Type: auth.TypePlatformAdmin})

	req := httptest.NewRequest(http.MethodPut, "/restaurants/3/active", strings.NewReader(`{"isActive":false}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if active, ok := repo.active[3]; !ok || active {
		t.Fatalf("expected restaurant 3 suspended, got %v", repo.active)
	}
}
