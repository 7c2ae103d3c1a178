package admin

import (
	"context"
	"strconv"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Service handles the platform directory.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns the restaurant directory page plus pagination metadata.
func (s *Service) List(ctx context.Context, scope rbac.AdminScope, page, perPage int) ([]Entry, shared.Pagination, error) {
	pg := shared.NewPagination(page, perPage, 0)
	entries, total, err := s.repo.List(ctx, scope, pg)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(pg.Page, pg.PerPage, total), nil
}

// Get returns one directory entry.
func (s *Service) Get(ctx context.Context, scope rbac.AdminScope, id int64) (*Entry, error) {
	return s.repo.Get(ctx, scope, id)
}

// SetActive suspends or reinstates a restaurant and records the action.
func (s *Service) SetActive(ctx context.Context, scope rbac.AdminScope, id int64, active bool) error {
	if err := s.repo.SetActive(ctx, scope, id, active); err != nil {
		return err
	}
	action := "suspend"
	if active {
		action = "reinstate"
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID(),
		Action:   action,
		Entity:   "restaurant",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}
