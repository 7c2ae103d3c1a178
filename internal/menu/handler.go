package menu

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Handler manages menu management endpoints.
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

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermMenuRead))
		r.Get("/categories", h.listCategories)
		r.Get("/items", h.listItems)
		r.Get("/items/{id}", h.showItem)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermMenuWrite))
		r.Post("/categories", h.createCategory)
		r.Post("/items", h.createItem)
		r.Put("/items/{id}", h.updateItem)
		r.Put("/items/{id}/availability", h.setAvailability)
	})
}

type categoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type itemResponse struct {
	ID          int64  `json:"id"`
	CategoryID  *int64 `json:"categoryId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	IsAvailable bool   `json:"isAvailable"`
}

func toItemResponse(it *Item) itemResponse {
	return itemResponse{
		ID:          it.ID,
		CategoryID:  it.CategoryID,
		Name:        it.Name,
		Description: it.Description,
		PriceCents:  it.PriceCents,
		IsAvailable: it.IsAvailable,
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	cats, err := h.service.ListCategories(r.Context(), scope)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Position: c.Position})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": out})
}

type categoryRequest struct {
	Name     string `json:"name" validate:"required"`
	Position int    `json:"position" validate:"min=0"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	c, err := h.service.CreateCategory(r.Context(), scope, req.Name, req.Position)
	if err != nil {
		h.logger.Error("create category", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, categoryResponse{ID: c.ID, Name: c.Name, Position: c.Position})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.ListItems(r.Context(), scope)
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) showItem(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid item id")
		return
	}
	it, err := h.service.GetItem(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(it))
}

type itemRequest struct {
	CategoryID  *int64 `json:"categoryId"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" validate:"min=0"`
	IsAvailable *bool  `json:"isAvailable"`
}

func (req *itemRequest) toItem() Item {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return Item{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		IsAvailable: available,
	}
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	it, err := h.service.CreateItem(r.Context(), scope, req.toItem())
	if err != nil {
		h.logger.Error("create item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemResponse(it))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid item id")
		return
	}
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	it, err := h.service.UpdateItem(r.Context(), scope, id, req.toItem())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(it))
}

type availabilityRequest struct {
	IsAvailable bool `json:"isAvailable"`
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid item id")
		return
	}
	var req availabilityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.service.SetAvailability(r.Context(), scope, id, req.IsAvailable); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"isAvailable": req.IsAvailable})
}
