package tables

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Service handles table business logic.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns all tables of the scoped restaurant.
func (s *Service) List(ctx context.Context, scope rbac.TenantScope) ([]Table, error) {
	return s.repo.List(ctx, scope)
}

// Get returns one table within the tenant scope.
func (s *Service) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Table, error) {
	return s.repo.Get(ctx, scope, id)
}

// Create validates input and inserts a table with a fresh QR token.
func (s *Service) Create(ctx context.Context, scope rbac.TenantScope, label string, seats int) (*Table, error) {
	label = strings.TrimSpace(label)
	if label == "" || seats <= 0 {
		return nil, shared.ErrValidation
	}
	return s.repo.Create(ctx, scope, label, uuid.NewString(), seats)
}

// Update modifies a table.
func (s *Service) Update(ctx context.Context, scope rbac.TenantScope, id int64, label string, seats int, isActive bool) (*Table, error) {
	label = strings.TrimSpace(label)
	if label == "" || seats <= 0 {
		return nil, shared.ErrValidation
	}
	return s.repo.Update(ctx, scope, id, label, seats, isActive)
}

// Delete removes a table and records the action in the audit log.
func (s *Service) Delete(ctx context.Context, scope rbac.TenantScope, actorID, id int64) error {
	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return err
	}
	if s.audit != nil {
		restaurantID := scope.RestaurantID()
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:      actorID,
			RestaurantID: &restaurantID,
			Action:       "delete",
			Entity:       "dining_table",
			EntityID:     strconv.FormatInt(id, 10),
		})
	}
	return nil
}

// ResolveQRToken resolves a scanned token to its table.
func (s *Service) ResolveQRToken(ctx context.Context, token string) (*Table, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, shared.ErrNotFound
	}
	return s.repo.FindByQRToken(ctx, token)
}
