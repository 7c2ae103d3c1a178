package rbac_test

import (
	"context"
	"testing"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/rbac"
	_ "github.com/qrserve/qrserve/testing"
)

type memStore struct {
	rbac.Store

	permissions map[string]rbac.Permission
	nextPermID  int64
	roles       map[int64]rbac.Role
	rolePerms   map[int64]map[int64]struct{}
	userRoles   map[int64]map[int64]struct{}
}

func newMemStore() *memStore {
	return &memStore{
		permissions: make(map[string]rbac.Permission),
		roles:       make(map[int64]rbac.Role),
		rolePerms:   make(map[int64]map[int64]struct{}),
		userRoles:   make(map[int64]map[int64]struct{}),
	}
}

func (s *memStore) UpsertPermission(ctx context.Context, key, category, description string) (rbac.Permission, error) {
	if p, ok := s.permissions[key]; ok {
		p.Category = category
		p.Description = description
		s.permissions[key] = p
		return p, nil
	}
	s.nextPermID++
	p := rbac.Permission{ID: s.nextPermID, Key: key, Category: category, Description: description, IsActive: true}
	s.permissions[key] = p
	return p, nil
}

func (s *memStore) ListPermissions(ctx context.Context) ([]rbac.Permission, error) {
	out := make([]rbac.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		out = append(out, p)
	}
	return out, nil
}

func (s *memStore) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	if s.rolePerms[roleID] == nil {
		s.rolePerms[roleID] = make(map[int64]struct{})
	}
	s.rolePerms[roleID][permissionID] = struct{}{}
	return nil
}

func (s *memStore) AssignRoleToUser(ctx context.Context, userID, roleID int64) error {
	if s.userRoles[userID] == nil {
		s.userRoles[userID] = make(map[int64]struct{})
	}
	s.userRoles[userID][roleID] = struct{}{}
	return nil
}

func (s *memStore) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	for roleID := range s.userRoles[userID] {
		names = append(names, s.roles[roleID].Name)
	}
	return names, nil
}

func (s *memStore) UserEffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	for roleID := range s.userRoles[userID] {
		for permID := range s.rolePerms[roleID] {
			for _, p := range s.permissions {
				if p.ID == permID {
					if _, ok := seen[p.Key]; !ok {
						seen[p.Key] = struct{}{}
						keys = append(keys, p.Key)
					}
				}
			}
		}
	}
	return keys, nil
}

func (s *memStore) addRole(id int64, name string) {
	s.roles[id] = rbac.Role{ID: id, Name: name}
}

func TestResolveUnionsPermissionsAcrossRoles(t *testing.T) {
	store := newMemStore()
	service := rbac.NewService(store)
	ctx := context.Background()

	read, _ := store.UpsertPermission(ctx, "orders:read", "orders", "")
	kitchen, _ := store.UpsertPermission(ctx, "orders:kitchen", "orders", "")
	menuRead, _ := store.UpsertPermission(ctx, "menu:read", "menu", "")

	store.addRole(1, "kitchen")
	store.addRole(2, "waiter")
	_ = store.AttachPermission(ctx, 1, read.ID)
	_ = store.AttachPermission(ctx, 1, kitchen.ID)
	_ = store.AttachPermission(ctx, 2, read.ID)
	_ = store.AttachPermission(ctx, 2, menuRead.ID)
	_ = store.AssignRoleToUser(ctx, 7, 1)
	_ = store.AssignRoleToUser(ctx, 7, 2)

	tc, err := service.Resolve(ctx, auth.Principal{UserID: 7, Type: auth.TypeStaff})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, key := range []string{"orders:read", "orders:kitchen", "menu:read"} {
		if !tc.Has(key) {
			t.Fatalf("expected permission %s in union", key)
		}
	}
	if tc.Has("payments:record") {
		t.Fatalf("unexpected permission granted")
	}
	if got := len(tc.Permissions()); got != 3 {
		t.Fatalf("expected 3 deduplicated permissions, got %d", got)
	}
}

func TestResolveReflectsGrantWithoutRelogin(t *testing.T) {
	store := newMemStore()
	service := rbac.NewService(store)
	ctx := context.Background()
	principal := auth.Principal{UserID: 3, Type: auth.TypeStaff}

	read, _ := store.UpsertPermission(ctx, "orders:read", "orders", "")
	store.addRole(1, "waiter")
	_ = store.AttachPermission(ctx, 1, read.ID)
	_ = store.AssignRoleToUser(ctx, 3, 1)

	before, err := service.Resolve(ctx, principal)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if before.Has("orders:serve") {
		t.Fatalf("permission granted too early")
	}

	// Grant while the user stays logged in; the next resolution sees it.
	serve, _ := store.UpsertPermission(ctx, "orders:serve", "orders", "")
	_ = store.AttachPermission(ctx, 1, serve.ID)

	after, err := service.Resolve(ctx, principal)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !after.Has("orders:serve") {
		t.Fatalf("expected new grant on re-resolution")
	}
	if before.Has("orders:serve") {
		t.Fatalf("existing request context must stay stable")
	}
}

func TestEnsurePermissionNormalizesAndValidates(t *testing.T) {
	store := newMemStore()
	service := rbac.NewService(store)
	ctx := context.Background()

	p, err := service.EnsurePermission(ctx, "  Orders:Read ", "read orders")
	if err != nil {
		t.Fatalf("ensure permission: %v", err)
	}
	if p.Key != "orders:read" {
		t.Fatalf("expected normalized key, got %q", p.Key)
	}
	if p.Category != "orders" {
		t.Fatalf("expected derived category, got %q", p.Category)
	}

	if _, err := service.EnsurePermission(ctx, "ordersread", ""); err == nil {
		t.Fatalf("expected error for key without colon")
	}

	// Upsert is idempotent on the key.
	again, err := service.EnsurePermission(ctx, "orders:read", "read orders")
	if err != nil {
		t.Fatalf("ensure permission again: %v", err)
	}
	if again.ID != p.ID {
		t.Fatalf("expected same permission row, got %d and %d", p.ID, again.ID)
	}
}

func TestHasIsCaseInsensitive(t *testing.T) {
	tc := rbac.NewTenantContext(auth.Principal{UserID: 1}, nil, []string{"Orders:Read"})
	if !tc.Has("orders:read") {
		t.Fatalf("expected normalized lookup to match")
	}
	if !tc.Has(" ORDERS:READ ") {
		t.Fatalf("expected trimmed lookup to match")
	}
}
