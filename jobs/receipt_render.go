package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	"github.com/qrserve/qrserve/internal/payments"
	"github.com/qrserve/qrserve/report"
)

// ReceiptRenderer processes receipt:render tasks: load the payment, render
// the PDF through Gotenberg, store it on disk and point the payment row at it.
type ReceiptRenderer struct {
	logger   *slog.Logger
	repo     *payments.Repository
	renderer *report.ReceiptRenderer
	dir      string
}

// NewReceiptRenderer constructs the task handler.
func NewReceiptRenderer(logger *slog.Logger, repo *payments.Repository, renderer *report.ReceiptRenderer, dir string) *ReceiptRenderer {
	return &ReceiptRenderer{logger: logger, repo: repo, renderer: renderer, dir: dir}
}

// Handle implements the asynq handler for TaskReceiptRender.
func (h *ReceiptRenderer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReceiptRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	payment, order, restaurantName, err := h.repo.ReceiptData(ctx, payload.PaymentID)
	if err != nil {
		return fmt.Errorf("jobs: load receipt data for payment %d: %w", payload.PaymentID, err)
	}
	pdf, err := h.renderer.Render(ctx, report.ReceiptData{
		RestaurantName: restaurantName,
		Payment:        payment,
		Order:          order,
	})
	if err != nil {
		return fmt.Errorf("jobs: render receipt %d: %w", payload.PaymentID, err)
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(h.dir, fmt.Sprintf("receipt-%d.pdf", payment.ID))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return err
	}
	if err := h.repo.SetReceiptPath(ctx, payment.ID, path); err != nil {
		return err
	}
	h.logger.Info("receipt rendered", slog.Int64("payment", payment.ID), slog.String("path", path))
	return nil
}
