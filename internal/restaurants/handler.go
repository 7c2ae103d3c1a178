package restaurants

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Handler manages restaurant settings endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	gate     rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validate: validator.New()}
}

// MountRoutes registers restaurant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermRestaurantRead))
		r.Get("/restaurant", h.show)
		r.Get("/dashboard", h.dashboard)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermRestaurantWrite))
		r.Put("/restaurant", h.update)
	})
}

type restaurantResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"isActive"`
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rest, err := h.service.Get(r.Context(), scope)
	if err != nil {
		h.logger.Error("get restaurant", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, restaurantResponse{ID: rest.ID, Name: rest.Name, Slug: rest.Slug, IsActive: rest.IsActive})
}

type updateRestaurantRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Slug string `json:"slug" validate:"required,min=2"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateRestaurantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	rest, err := h.service.UpdateSettings(r.Context(), scope, req.Name, req.Slug)
	if err != nil {
		h.logger.Error("update restaurant", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, restaurantResponse{ID: rest.ID, Name: rest.Name, Slug: rest.Slug, IsActive: rest.IsActive})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	dash, err := h.service.Dashboard(r.Context(), scope)
	if err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}
