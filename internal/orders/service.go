package orders

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Service handles order business logic.
type Service struct {
	repo   RepositoryPort
	audit  *shared.AuditLogger
	flight singleflight.Group
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

const maxLinesPerOrder = 50

// Place creates a pending order from a guest's cart. Quantities must be
// positive and the cart must not be empty.
func (s *Service) Place(ctx context.Context, restaurantID, tableID int64, note string, lines []PlacedLine) (*Order, error) {
	if len(lines) == 0 || len(lines) > maxLinesPerOrder {
		return nil, shared.ErrValidation
	}
	for _, l := range lines {
		if l.Quantity <= 0 || l.MenuItemID <= 0 {
			return nil, shared.ErrValidation
		}
	}
	return s.repo.Place(ctx, restaurantID, tableID, strings.TrimSpace(note), lines)
}

// Get returns one order within the tenant scope.
func (s *Service) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Order, error) {
	return s.repo.Get(ctx, scope, id)
}

// GetForTable returns an order for the public status page.
func (s *Service) GetForTable(ctx context.Context, restaurantID, tableID, id int64) (*Order, error) {
	return s.repo.GetForTable(ctx, restaurantID, tableID, id)
}

// List returns orders of the scoped restaurant.
func (s *Service) List(ctx context.Context, scope rbac.TenantScope, statuses []Status, p shared.Pagination) ([]Order, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, shared.ErrValidation
		}
	}
	return s.repo.List(ctx, scope, statuses, p)
}

// Kitchen returns the live kitchen board. Concurrent requests for the same
// restaurant collapse into a single query; kitchen displays poll aggressively
// and the answer is identical within a poll interval.
func (s *Service) Kitchen(ctx context.Context, scope rbac.TenantScope) ([]Order, error) {
	key := strconv.FormatInt(scope.RestaurantID(), 10)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		return s.repo.Kitchen(ctx, scope)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Order), nil
}

// Transition moves an order to the requested state, enforcing the lifecycle.
func (s *Service) Transition(ctx context.Context, scope rbac.TenantScope, actorID, id int64, to Status) (*Order, error) {
	current, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(current.Status, to); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateStatus(ctx, scope, id, current.Status, to)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		restaurantID := scope.RestaurantID()
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:      actorID,
			RestaurantID: &restaurantID,
			Action:       "status:" + string(to),
			Entity:       "order",
			EntityID:     strconv.FormatInt(id, 10),
		})
	}
	return updated, nil
}
