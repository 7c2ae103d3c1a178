package orders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/orders"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
	_ "github.com/qrserve/qrserve/testing"
)

type fakeRepo struct {
	byID        map[int64]*orders.Order
	placed      []orders.PlacedLine
	updatedFrom orders.Status
	updatedTo   orders.Status
	kitchen     []orders.Order
	kitchenHits int
}

func (f *fakeRepo) Place(ctx context.Context, restaurantID, tableID int64, note string, lines []orders.PlacedLine) (*orders.Order, error) {
	f.placed = lines
	return &orders.Order{ID: 1, RestaurantID: restaurantID, TableID: tableID, Note: note, Status: orders.StatusPending}, nil
}

func (f *fakeRepo) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*orders.Order, error) {
	if o, ok := f.byID[id]; ok && o.RestaurantID == scope.RestaurantID() {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) GetForTable(ctx context.Context, restaurantID, tableID, id int64) (*orders.Order, error) {
	if o, ok := f.byID[id]; ok && o.RestaurantID == restaurantID && o.TableID == tableID {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, scope rbac.TenantScope, statuses []orders.Status, p shared.Pagination) ([]orders.Order, error) {
	return nil, nil
}

func (f *fakeRepo) Kitchen(ctx context.Context, scope rbac.TenantScope) ([]orders.Order, error) {
	f.kitchenHits++
	return f.kitchen, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, scope rbac.TenantScope, id int64, from, to orders.Status) (*orders.Order, error) {
	o, ok := f.byID[id]
	if !ok || o.Status != from {
		return nil, shared.ErrNotFound
	}
	f.updatedFrom, f.updatedTo = from, to
	updated := *o
	updated.Status = to
	f.byID[id] = &updated
	return &updated, nil
}

var _ orders.RepositoryPort = (*fakeRepo)(nil)

func tenantScope(t *testing.T, restaurantID int64) rbac.TenantScope {
	t.Helper()
	tc := rbac.NewTenantContext(auth.Principal{UserID: 1, Type: auth.TypeStaff, RestaurantID: &restaurantID}, nil, nil)
	scope, err := rbac.RequireTenant(rbac.ContextWithIdentity(context.Background(), tc))
	if err != nil {
		t.Fatalf("require tenant: %v", err)
	}
	return scope
}

func TestPlaceRejectsInvalidCarts(t *testing.T) {
	svc := orders.NewService(&fakeRepo{}, nil)
	ctx := context.Background()

	if _, err := svc.Place(ctx, 1, 2, "", nil); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("empty cart must fail, got %v", err)
	}
	if _, err := svc.Place(ctx, 1, 2, "", []orders.PlacedLine{{MenuItemID: 3, Quantity: 0}}); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("zero quantity must fail, got %v", err)
	}
	if _, err := svc.Place(ctx, 1, 2, "", []orders.PlacedLine{{MenuItemID: 0, Quantity: 1}}); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("missing item id must fail, got %v", err)
	}

	oversized := make([]orders.PlacedLine, 51)
	for i := range oversized {
		oversized[i] = orders.PlacedLine{MenuItemID: int64(i + 1), Quantity: 1}
	}
	if _, err := svc.Place(ctx, 1, 2, "", oversized); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("oversized cart must fail, got %v", err)
	}
}

func TestPlaceTrimsNote(t *testing.T) {
	repo := &fakeRepo{}
	svc := orders.NewService(repo, nil)

	o, err := svc.Place(context.Background(), 1, 2, "  no onions  ", []orders.PlacedLine{{MenuItemID: 3, Quantity: 2}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if o.Note != "no onions" {
		t.Fatalf("expected trimmed note, got %q", o.Note)
	}
	if len(repo.placed) != 1 {
		t.Fatalf("expected one line forwarded, got %d", len(repo.placed))
	}
}

func TestTransitionEnforcesLifecycle(t *testing.T) {
	repo := &fakeRepo{byID: map[int64]*orders.Order{
		10: {ID: 10, RestaurantID: 1, Status: orders.StatusPending},
	}}
	svc := orders.NewService(repo, nil)
	scope := tenantScope(t, 1)

	if _, err := svc.Transition(context.Background(), scope, 5, 10, orders.StatusServed); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("pending -> served must fail, got %v", err)
	}

	updated, err := svc.Transition(context.Background(), scope, 5, 10, orders.StatusConfirmed)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != orders.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}
	if repo.updatedFrom != orders.StatusPending || repo.updatedTo != orders.StatusConfirmed {
		t.Fatalf("update must carry the expected from-state, got %s -> %s", repo.updatedFrom, repo.updatedTo)
	}
}

func TestTransitionHidesForeignOrders(t *testing.T) {
	repo := &fakeRepo{byID: map[int64]*orders.Order{
		10: {ID: 10, RestaurantID: 2, Status: orders.StatusPending},
	}}
	svc := orders.NewService(repo, nil)
	scope := tenantScope(t, 1)

	if _, err := svc.Transition(context.Background(), scope, 5, 10, orders.StatusConfirmed); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("cross-tenant order must read as not found, got %v", err)
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc := orders.NewService(&fakeRepo{}, nil)
	scope := tenantScope(t, 1)

	_, err := svc.List(context.Background(), scope, []orders.Status{"archived"}, shared.Pagination{})
	if !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("unknown status filter must fail, got %v", err)
	}
}

func TestKitchenDelegatesToRepository(t *testing.T) {
	repo := &fakeRepo{kitchen: []orders.Order{
		{ID: 1, Status: orders.StatusConfirmed},
		{ID: 2, Status: orders.StatusPreparing},
	}}
	svc := orders.NewService(repo, nil)
	scope := tenantScope(t, 1)

	board, err := svc.Kitchen(context.Background(), scope)
	if err != nil {
		t.Fatalf("kitchen: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(board))
	}
	if repo.kitchenHits != 1 {
		t.Fatalf("expected one repository call, got %d", repo.kitchenHits)
	}
}
