package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/qrserve/qrserve/internal/admin"
	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/menu"
	"github.com/qrserve/qrserve/internal/observability"
	"github.com/qrserve/qrserve/internal/orders"
	"github.com/qrserve/qrserve/internal/payments"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/restaurants"
	"github.com/qrserve/qrserve/internal/shared"
	"github.com/qrserve/qrserve/internal/staff"
	"github.com/qrserve/qrserve/internal/tables"
	"github.com/qrserve/qrserve/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware

	AuthHandler        *auth.Handler
	RBACHandler        *rbac.Handler
	RestaurantHandler  *restaurants.Handler
	TablesHandler      *tables.Handler
	MenuHandler        *menu.Handler
	OrdersHandler      *orders.Handler
	PublicHandler      *orders.PublicHandler
	PaymentsHandler    *payments.Handler
	StaffHandler       *staff.Handler
	AdminHandler       *admin.Handler
	JobsHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Guest QR surface. No authentication: the table token in the path is
	// the credential.
	if params.PublicHandler != nil {
		r.Route("/t/{token}", params.PublicHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(params.RBACMiddleware.Identify)

		r.Route("/auth", params.AuthHandler.MountRoutes)

		if params.RBACHandler != nil {
			params.RBACHandler.MountRoutes(r)
		}
		if params.RestaurantHandler != nil {
			params.RestaurantHandler.MountRoutes(r)
		}
		if params.TablesHandler != nil {
			r.Route("/tables", params.TablesHandler.MountRoutes)
		}
		if params.MenuHandler != nil {
			r.Route("/menu", params.MenuHandler.MountRoutes)
		}
		if params.OrdersHandler != nil {
			r.Route("/orders", params.OrdersHandler.MountRoutes)
		}
		if params.PaymentsHandler != nil {
			r.Route("/payments", params.PaymentsHandler.MountRoutes)
		}
		if params.StaffHandler != nil {
			r.Route("/staff", params.StaffHandler.MountRoutes)
		}
		if params.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequirePlatformAdmin)
				params.AdminHandler.MountRoutes(r)
				if params.JobsHandler != nil {
					r.Route("/jobs", params.JobsHandler.MountRoutes)
				}
			})
		}
	})

	return r
}
