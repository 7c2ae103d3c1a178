package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/qrserve/qrserve/internal/admin"
	"github.com/qrserve/qrserve/internal/app"
	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/menu"
	"github.com/qrserve/qrserve/internal/observability"
	"github.com/qrserve/qrserve/internal/orders"
	"github.com/qrserve/qrserve/internal/payments"
	"github.com/qrserve/qrserve/internal/platform/cache"
	"github.com/qrserve/qrserve/internal/platform/db"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/restaurants"
	"github.com/qrserve/qrserve/internal/shared"
	"github.com/qrserve/qrserve/internal/staff"
	"github.com/qrserve/qrserve/internal/tables"
	"github.com/qrserve/qrserve/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	// A malformed permission catalog or role template is a programming
	// error; refuse to start instead of serving with holes in the gate.
	if err := rbac.ValidateTemplates(rbac.DefaultTemplates()); err != nil {
		logger.Error("validate role templates", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.LegacySessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	tokenValidator := auth.NewValidator(authService)

	rbacService := rbac.NewService(rbac.NewStore(pool))
	rbacMiddleware := rbac.Middleware{Validator: tokenValidator, Service: rbacService, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	restaurantRepo := restaurants.NewRepository(pool)
	restaurantService := restaurants.NewService(restaurantRepo)
	restaurantHandler := restaurants.NewHandler(logger, restaurantService, rbacMiddleware)

	tablesRepo := tables.NewRepository(pool)
	tablesService := tables.NewService(tablesRepo, auditLogger)
	tablesHandler := tables.NewHandler(logger, tablesService, rbacMiddleware)

	menuRepo := menu.NewRepository(pool)
	menuService := menu.NewService(menuRepo)
	menuHandler := menu.NewHandler(logger, menuService, rbacMiddleware)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, auditLogger)
	ordersHandler := orders.NewHandler(logger, ordersService, rbacMiddleware)
	publicHandler := orders.NewPublicHandler(logger, ordersService, tablesService, menuService, metrics)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(logger, paymentsRepo, idempotencyStore, auditLogger, jobsClient)
	paymentsHandler := payments.NewHandler(logger, paymentsService, rbacMiddleware)

	staffRepo := staff.NewRepository(pool)
	staffService := staff.NewService(staffRepo, rbacService, auditLogger)
	staffHandler := staff.NewHandler(logger, staffService, rbacMiddleware)

	adminRepo := admin.NewRepository(pool)
	adminService := admin.NewService(adminRepo, auditLogger)
	adminHandler := admin.NewHandler(logger, adminService)

	jobsInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobsHandler := jobs.NewHandler(jobsInspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		RBACMiddleware: rbacMiddleware,

		AuthHandler:       authHandler,
		RBACHandler:       rbacHandler,
		RestaurantHandler: restaurantHandler,
		TablesHandler:     tablesHandler,
		MenuHandler:       menuHandler,
		OrdersHandler:     ordersHandler,
		PublicHandler:     publicHandler,
		PaymentsHandler:   paymentsHandler,
		StaffHandler:      staffHandler,
		AdminHandler:      adminHandler,
		JobsHandler:       jobsHandler,

		Metrics: metrics,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppRequestTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
