package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/qrserve/qrserve/internal/app"
	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/payments"
	"github.com/qrserve/qrserve/internal/platform/db"
	"github.com/qrserve/qrserve/internal/shared"
	"github.com/qrserve/qrserve/jobs"
	"github.com/qrserve/qrserve/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	paymentsRepo := payments.NewRepository(pool)
	pdfClient := report.NewClient(cfg.GotenbergURL)
	receiptRenderer := report.NewReceiptRenderer(pdfClient)
	receiptJob := jobs.NewReceiptRenderer(logger, paymentsRepo, receiptRenderer, cfg.ReceiptDir)

	authService := auth.NewService(auth.NewRepository(pool))
	maintenance := jobs.NewMaintenance(logger, authService, shared.NewIdempotencyStore(pool))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReceiptRender, Handler: receiptJob.Handle},
			{Type: jobs.TaskSessionPurge, Handler: maintenance.HandleSessionPurge},
			{Type: jobs.TaskIdempotencyCleanup, Handler: maintenance.HandleIdempotencyCleanup},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "10 3 * * *", Task: jobs.NewSessionPurgeTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "40 3 * * *", Task: jobs.NewIdempotencyCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
