package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/shared"
)

// Maintenance bundles the periodic housekeeping tasks.
type Maintenance struct {
	logger      *slog.Logger
	auth        *auth.Service
	idempotency *shared.IdempotencyStore
}

// NewMaintenance constructs the maintenance handlers.
func NewMaintenance(logger *slog.Logger, authSvc *auth.Service, idem *shared.IdempotencyStore) *Maintenance {
	return &Maintenance{logger: logger, auth: authSvc, idempotency: idem}
}

// HandleSessionPurge removes expired session rows from the database. Redis
// entries expire on their own via TTL.
func (m *Maintenance) HandleSessionPurge(ctx context.Context, t *asynq.Task) error {
	n, err := m.auth.PurgeExpiredSessions(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		m.logger.Info("purged expired sessions", slog.Int64("count", n))
	}
	return nil
}

const idempotencyRetention = 7 * 24 * time.Hour

// HandleIdempotencyCleanup prunes idempotency keys past retention.
func (m *Maintenance) HandleIdempotencyCleanup(ctx context.Context, t *asynq.Task) error {
	return m.idempotency.Cleanup(ctx, idempotencyRetention)
}
