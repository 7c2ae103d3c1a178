package admin

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/rbac"
)

// Handler manages the platform directory endpoints. All routes are mounted
// behind the platform-admin gate; each handler additionally acquires an
// AdminScope before touching data.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers platform directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/restaurants", h.list)
	r.Get("/restaurants/{id}", h.show)
	r.Put("/restaurants/{id}/active", h.setActive)
}

type ownerResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type planResponse struct {
	Name string `json:"name"`
}

type subscriptionResponse struct {
	Status string       `json:"status"`
	Plan   planResponse `json:"plan"`
}

type entryResponse struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	Slug         string               `json:"slug"`
	IsActive     bool                 `json:"isActive"`
	CreatedAt    time.Time            `json:"createdAt"`
	Owner        ownerResponse        `json:"owner"`
	Subscription subscriptionResponse `json:"subscription"`
}

func toEntryResponse(e *Entry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		Name:      e.Name,
		Slug:      e.Slug,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		Owner: ownerResponse{
			ID:        e.Owner.ID,
			Email:     e.Owner.Email,
			FirstName: e.Owner.FirstName,
			LastName:  e.Owner.LastName,
		},
		Subscription: subscriptionResponse{
			Status: e.Subscription.Status,
			Plan:   planResponse{Name: e.Subscription.PlanName},
		},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequirePlatformAdmin(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	entries, pg, err := h.service.List(r.Context(), scope, page, perPage)
	if err != nil {
		h.logger.Error("list directory", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"restaurants": out, "pagination": pg})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequirePlatformAdmin(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid restaurant id")
		return
	}
	e, err := h.service.Get(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(e))
}

type activeRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequirePlatformAdmin(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid restaurant id")
		return
	}
	var req activeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.service.SetActive(r.Context(), scope, id, req.IsActive); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"isActive": req.IsActive})
}
