package menu

import (
	"context"
	"strings"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Service handles menu business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListCategories returns categories of the scoped restaurant.
func (s *Service) ListCategories(ctx context.Context, scope rbac.TenantScope) ([]Category, error) {
	return s.repo.ListCategories(ctx, scope)
}

// CreateCategory validates and inserts a category.
func (s *Service) CreateCategory(ctx context.Context, scope rbac.TenantScope, name string, position int) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrValidation
	}
	return s.repo.CreateCategory(ctx, scope, name, position)
}

// ListItems returns all items of the scoped restaurant.
func (s *Service) ListItems(ctx context.Context, scope rbac.TenantScope) ([]Item, error) {
	return s.repo.ListItems(ctx, scope)
}

// GetItem returns one item within the tenant scope.
func (s *Service) GetItem(ctx context.Context, scope rbac.TenantScope, id int64) (*Item, error) {
	return s.repo.GetItem(ctx, scope, id)
}

// CreateItem validates and inserts an item.
func (s *Service) CreateItem(ctx context.Context, scope rbac.TenantScope, item Item) (*Item, error) {
	if err := validateItem(&item); err != nil {
		return nil, err
	}
	return s.repo.CreateItem(ctx, scope, item)
}

// UpdateItem validates and modifies an item.
func (s *Service) UpdateItem(ctx context.Context, scope rbac.TenantScope, id int64, item Item) (*Item, error) {
	if err := validateItem(&item); err != nil {
		return nil, err
	}
	return s.repo.UpdateItem(ctx, scope, id, item)
}

// SetAvailability flips an item on or off the customer-facing menu.
func (s *Service) SetAvailability(ctx context.Context, scope rbac.TenantScope, id int64, available bool) error {
	return s.repo.SetAvailability(ctx, scope, id, available)
}

// PublicMenu returns the available items for a restaurant, grouped lookup is
// left to the caller. Used by the QR ordering surface, no tenant scope needed.
func (s *Service) PublicMenu(ctx context.Context, restaurantID int64) ([]Item, error) {
	return s.repo.AvailableItems(ctx, restaurantID)
}

func validateItem(item *Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" || item.PriceCents < 0 {
		return shared.ErrValidation
	}
	return nil
}
