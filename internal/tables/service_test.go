package tables_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
	"github.com/qrserve/qrserve/internal/tables"
	_ "github.com/qrserve/qrserve/testing"
)

type fakeRepo struct {
	nextID  int64
	byID    map[int64]*tables.Table
	byToken map[string]*tables.Table
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[int64]*tables.Table), byToken: make(map[string]*tables.Table)}
}

func (f *fakeRepo) List(ctx context.Context, scope rbac.TenantScope) ([]tables.Table, error) {
	var out []tables.Table
	for _, t := range f.byID {
		if t.RestaurantID == scope.RestaurantID() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*tables.Table, error) {
	if t, ok := f.byID[id]; ok && t.RestaurantID == scope.RestaurantID() {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) Create(ctx context.Context, scope rbac.TenantScope, label, qrToken string, seats int) (*tables.Table, error) {
	f.nextID++
	t := &tables.Table{ID: f.nextID, RestaurantID: scope.RestaurantID(), Label: label, QRToken: qrToken, Seats: seats, IsActive: true}
	f.byID[t.ID] = t
	f.byToken[qrToken] = t
	return t, nil
}

func (f *fakeRepo) Update(ctx context.Context, scope rbac.TenantScope, id int64, label string, seats int, isActive bool) (*tables.Table, error) {
	t, ok := f.byID[id]
	if !ok || t.RestaurantID != scope.RestaurantID() {
		return nil, shared.ErrNotFound
	}
	t.Label, t.Seats, t.IsActive = label, seats, isActive
	return t, nil
}

func (f *fakeRepo) Delete(ctx context.Context, scope rbac.TenantScope, id int64) error {
	t, ok := f.byID[id]
	if !ok || t.RestaurantID != scope.RestaurantID() {
		return shared.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.byToken, t.QRToken)
	return nil
}

func (f *fakeRepo) FindByQRToken(ctx context.Context, token string) (*tables.Table, error) {
	if t, ok := f.byToken[token]; ok && t.IsActive {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

var _ tables.RepositoryPort = (*fakeRepo)(nil)

func tenantScope(t *testing.T, restaurantID int64) rbac.TenantScope {
	t.Helper()
	tc := rbac.NewTenantContext(auth.Principal{UserID: 1, Type: auth.TypeOwner, RestaurantID: &restaurantID}, nil, nil)
	scope, err := rbac.RequireTenant(rbac.ContextWithIdentity(context.Background(), tc))
	if err != nil {
		t.Fatalf("require tenant: %v", err)
	}
	return scope
}

func TestCreateIssuesDistinctQRTokens(t *testing.T) {
	repo := newFakeRepo()
	svc := tables.NewService(repo, nil)
	scope := tenantScope(t, 1)
	ctx := context.Background()

	first, err := svc.Create(ctx, scope, "T1", 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, scope, "T2", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if first.QRToken == "" || second.QRToken == "" {
		t.Fatalf("tables must carry a QR token")
	}
	if first.QRToken == second.QRToken {
		t.Fatalf("tokens must be unique per table")
	}
	if _, err := uuid.Parse(first.QRToken); err != nil {
		t.Fatalf("token must be opaque and unguessable: %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc := tables.NewService(newFakeRepo(), nil)
	scope := tenantScope(t, 1)
	ctx := context.Background()

	if _, err := svc.Create(ctx, scope, "   ", 4); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("blank label must fail, got %v", err)
	}
	if _, err := svc.Create(ctx, scope, "T1", 0); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("zero seats must fail, got %v", err)
	}
}

func TestDeleteHidesForeignTables(t *testing.T) {
	repo := newFakeRepo()
	svc := tables.NewService(repo, nil)
	owner := tenantScope(t, 1)
	intruder := tenantScope(t, 2)

	created, err := svc.Create(context.Background(), owner, "T1", 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), intruder, 9, created.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("foreign delete must read as not found, got %v", err)
	}
	if err := svc.Delete(context.Background(), owner, 9, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestResolveQRToken(t *testing.T) {
	repo := newFakeRepo()
	svc := tables.NewService(repo, nil)
	scope := tenantScope(t, 1)

	created, err := svc.Create(context.Background(), scope, "T1", 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resolved, err := svc.ResolveQRToken(context.Background(), " "+created.QRToken+" ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != created.ID {
		t.Fatalf("expected table %d, got %d", created.ID, resolved.ID)
	}

	if _, err := svc.ResolveQRToken(context.Background(), ""); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("empty token must resolve as not found, got %v", err)
	}
	if _, err := svc.ResolveQRToken(context.Background(), "unknown"); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("unknown token must resolve as not found, got %v", err)
	}
}
