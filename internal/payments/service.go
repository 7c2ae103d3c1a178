package payments

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// ReceiptEnqueuer schedules background receipt rendering for a payment.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, paymentID int64) error
}

// Service handles payment business logic.
type Service struct {
	logger      *slog.Logger
	repo        RepositoryPort
	idempotency *shared.IdempotencyStore
	audit       *shared.AuditLogger
	receipts    ReceiptEnqueuer
}

// NewService builds a Service instance. receipts may be nil when no worker
// is deployed.
func NewService(logger *slog.Logger, repo RepositoryPort, idem *shared.IdempotencyStore, audit *shared.AuditLogger, receipts ReceiptEnqueuer) *Service {
	return &Service{logger: logger, repo: repo, idempotency: idem, audit: audit, receipts: receipts}
}

// Record settles a served order. An idempotency key makes retried requests
// safe: replays surface the conflict instead of a second charge row.
func (s *Service) Record(ctx context.Context, scope rbac.TenantScope, actorID, orderID int64, method Method, idempotencyKey string) (*Payment, error) {
	if !method.Valid() || orderID <= 0 {
		return nil, shared.ErrValidation
	}
	if idempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, "payments"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, shared.ErrDuplicate
			}
			return nil, err
		}
	}

	p, err := s.repo.Record(ctx, scope, orderID, actorID, method)
	if err != nil {
		if idempotencyKey != "" {
			_ = s.idempotency.Delete(ctx, idempotencyKey)
		}
		return nil, err
	}

	restaurantID := scope.RestaurantID()
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:      actorID,
		RestaurantID: &restaurantID,
		Action:       "record",
		Entity:       "payment",
		EntityID:     strconv.FormatInt(p.ID, 10),
		Meta:         map[string]any{"orderId": p.OrderID, "amountCents": p.AmountCents, "method": p.Method},
	})

	if s.receipts != nil {
		if err := s.receipts.EnqueueReceipt(ctx, p.ID); err != nil {
			// The payment is recorded; a missing receipt is recoverable.
			s.logger.Error("enqueue receipt", slog.Int64("payment", p.ID), slog.Any("error", err))
		}
	}
	return p, nil
}

// Get returns one payment within the tenant scope.
func (s *Service) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Payment, error) {
	return s.repo.Get(ctx, scope, id)
}

// List returns payments of the scoped restaurant.
func (s *Service) List(ctx context.Context, scope rbac.TenantScope, p shared.Pagination) ([]Payment, error) {
	return s.repo.List(ctx, scope, p)
}
