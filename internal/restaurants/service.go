package restaurants

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Service handles restaurant settings and the owner dashboard.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns the caller's restaurant.
func (s *Service) Get(ctx context.Context, scope rbac.TenantScope) (*Restaurant, error) {
	return s.repo.Get(ctx, scope)
}

// UpdateSettings validates and applies settings changes.
func (s *Service) UpdateSettings(ctx context.Context, scope rbac.TenantScope, name, slug string) (*Restaurant, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" || slug == "" {
		return nil, shared.ErrValidation
	}
	return s.repo.UpdateSettings(ctx, scope, name, slug)
}

// Dashboard gathers today's numbers. The three counts are independent reads,
// fetched in parallel.
func (s *Service) Dashboard(ctx context.Context, scope rbac.TenantScope) (*Dashboard, error) {
	var dash Dashboard
	startOfDay := time.Now().Truncate(24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountOpenOrders(gctx, scope)
		dash.OpenOrders = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountActiveTables(gctx, scope)
		dash.ActiveTables = n
		return err
	})
	g.Go(func() error {
		cents, err := s.repo.RevenueSince(gctx, scope, startOfDay)
		dash.RevenueTodayCents = cents
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}
