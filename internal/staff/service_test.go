package staff_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
	"github.com/qrserve/qrserve/internal/staff"
	_ "github.com/qrserve/qrserve/testing"
)

type roleStore struct {
	rbac.Store

	roles     map[int64]rbac.Role
	userRoles map[int64][]int64
}

func (s *roleStore) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	if r, ok := s.roles[id]; ok {
		return r, nil
	}
	return rbac.Role{}, shared.ErrNotFound
}

func (s *roleStore) AssignRoleToUser(ctx context.Context, userID, roleID int64) error {
	if s.userRoles == nil {
		s.userRoles = make(map[int64][]int64)
	}
	s.userRoles[userID] = append(s.userRoles[userID], roleID)
	return nil
}

func (s *roleStore) RemoveRoleFromUser(ctx context.Context, userID, roleID int64) error {
	return nil
}

type memberRepo struct {
	nextID  int64
	members map[int64]*staff.Member
	hashes  map[int64]string
}

func newMemberRepo() *memberRepo {
	return &memberRepo{members: make(map[int64]*staff.Member), hashes: make(map[int64]string)}
}

func (r *memberRepo) List(ctx context.Context, scope rbac.TenantScope) ([]staff.Member, error) {
	var out []staff.Member
	for _, m := range r.members {
		if m.RestaurantID != nil && *m.RestaurantID == scope.RestaurantID() {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memberRepo) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*staff.Member, error) {
	if m, ok := r.members[id]; ok && m.RestaurantID != nil && *m.RestaurantID == scope.RestaurantID() {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memberRepo) Create(ctx context.Context, scope rbac.TenantScope, u auth.User) (*auth.User, error) {
	for _, m := range r.members {
		if m.Email == u.Email {
			return nil, shared.ErrDuplicate
		}
	}
	r.nextID++
	restaurantID := scope.RestaurantID()
	u.ID = r.nextID
	u.RestaurantID = &restaurantID
	u.IsActive = true
	r.members[u.ID] = &staff.Member{User: u}
	r.hashes[u.ID] = u.PasswordHash
	return &u, nil
}

func (r *memberRepo) SetActive(ctx context.Context, scope rbac.TenantScope, id int64, active bool) error {
	m, ok := r.members[id]
	if !ok || m.RestaurantID == nil || *m.RestaurantID != scope.RestaurantID() {
		return shared.ErrNotFound
	}
	m.IsActive = active
	return nil
}

var _ staff.RepositoryPort = (*memberRepo)(nil)

func tenantScope(t *testing.T, restaurantID int64) rbac.TenantScope {
	t.Helper()
	tc := rbac.NewTenantContext(auth.Principal{UserID: 1, Type: auth.TypeOwner, RestaurantID: &restaurantID}, nil, nil)
	scope, err := rbac.RequireTenant(rbac.ContextWithIdentity(context.Background(), tc))
	if err != nil {
		t.Fatalf("require tenant: %v", err)
	}
	return scope
}

func newFixture(roles map[int64]rbac.Role) (*staff.Service, *memberRepo, *roleStore) {
	repo := newMemberRepo()
	store := &roleStore{roles: roles}
	return staff.NewService(repo, rbac.NewService(store), nil), repo, store
}

func TestCreateHashesPasswordAndAssignsRoles(t *testing.T) {
	restaurantID := int64(1)
	svc, repo, store := newFixture(map[int64]rbac.Role{
		3: {ID: 3, Name: "waiter", RestaurantID: &restaurantID},
	})
	scope := tenantScope(t, 1)

	member, err := svc.Create(context.Background(), scope, 1, staff.CreateInput{
		Email:    " Waiter@Demo.Local ",
		Password: "correct horse",
		RoleIDs:  []int64{3},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if member.Email != "waiter@demo.local" {
		t.Fatalf("expected normalized email, got %q", member.Email)
	}
	hash := repo.hashes[member.ID]
	if hash == "correct horse" {
		t.Fatalf("password must never be stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")); err != nil {
		t.Fatalf("stored hash must verify: %v", err)
	}
	if got := store.userRoles[member.ID]; len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected role 3 assigned, got %v", got)
	}
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc, _, _ := newFixture(nil)
	scope := tenantScope(t, 1)

	_, err := svc.Create(context.Background(), scope, 1, staff.CreateInput{
		Email:    "waiter@demo.local",
		Password: "short",
	})
	if !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("short password must fail, got %v", err)
	}
}

func TestCreateHidesForeignRoles(t *testing.T) {
	otherRestaurant := int64(2)
	svc, repo, _ := newFixture(map[int64]rbac.Role{
		3: {ID: 3, Name: "waiter", RestaurantID: &otherRestaurant},
	})
	scope := tenantScope(t, 1)

	_, err := svc.Create(context.Background(), scope, 1, staff.CreateInput{
		Email:    "waiter@demo.local",
		Password: "correct horse",
		RoleIDs:  []int64{3},
	})
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("foreign role must read as not found, got %v", err)
	}
	if len(repo.members) != 0 {
		t.Fatalf("no account may be created when role scoping fails")
	}
}

func TestCreateAllowsPlatformTemplateRoles(t *testing.T) {
	svc, _, store := newFixture(map[int64]rbac.Role{
		8: {ID: 8, Name: "kitchen"},
	})
	scope := tenantScope(t, 1)

	member, err := svc.Create(context.Background(), scope, 1, staff.CreateInput{
		Email:    "cook@demo.local",
		Password: "correct horse",
		RoleIDs:  []int64{8},
	})
	if err != nil {
		t.Fatalf("create with template role: %v", err)
	}
	if got := store.userRoles[member.ID]; len(got) != 1 || got[0] != 8 {
		t.Fatalf("expected template role assigned, got %v", got)
	}
}

func TestSetActiveIsTenantScoped(t *testing.T) {
	restaurantID := int64(1)
	svc, _, _ := newFixture(map[int64]rbac.Role{
		3: {ID: 3, Name: "waiter", RestaurantID: &restaurantID},
	})
	owner := tenantScope(t, 1)
	intruder := tenantScope(t, 2)

	member, err := svc.Create(context.Background(), owner, 1, staff.CreateInput{
		Email:    "waiter@demo.local",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SetActive(context.Background(), intruder, 9, member.ID, false); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("cross-tenant deactivation must be not found, got %v", err)
	}
	if err := svc.SetActive(context.Background(), owner, 1, member.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
}
