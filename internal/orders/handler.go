package orders

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Handler manages staff-facing order endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermOrdersRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermOrdersKitchen))
		r.Get("/kitchen", h.kitchen)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermOrdersWrite, shared.PermOrdersKitchen, shared.PermOrdersServe))
		r.Put("/{id}/status", h.updateStatus)
	})
}

// statusPermission maps each target state to the permission that may set it.
// Confirming and cancelling are front-of-house actions, preparing and ready
// belong to the kitchen, serving to whoever runs food.
var statusPermission = map[Status]string{
	StatusConfirmed: shared.PermOrdersWrite,
	StatusCancelled: shared.PermOrdersWrite,
	StatusPreparing: shared.PermOrdersKitchen,
	StatusReady:     shared.PermOrdersKitchen,
	StatusServed:    shared.PermOrdersServe,
}

type lineResponse struct {
	MenuItemID     int64  `json:"menuItemId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

type orderResponse struct {
	ID         int64          `json:"id"`
	TableID    int64          `json:"tableId"`
	TableLabel string         `json:"tableLabel"`
	Status     Status         `json:"status"`
	Note       string         `json:"note,omitempty"`
	TotalCents int64          `json:"totalCents"`
	Lines      []lineResponse `json:"lines"`
	PlacedAt   time.Time      `json:"placedAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func toOrderResponse(o *Order) orderResponse {
	lines := make([]lineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, lineResponse{
			MenuItemID:     l.MenuItemID,
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			LineTotalCents: l.LineTotal(),
		})
	}
	return orderResponse{
		ID:         o.ID,
		TableID:    o.TableID,
		TableLabel: o.TableLabel,
		Status:     o.Status,
		Note:       o.Note,
		TotalCents: o.TotalCents,
		Lines:      lines,
		PlacedAt:   o.PlacedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var statuses []Status
	for _, raw := range r.URL.Query()["status"] {
		statuses = append(statuses, Status(raw))
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	p := shared.NewPagination(page, perPage, 0)

	list, err := h.service.List(r.Context(), scope, statuses, p)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(list))
	for i := range list {
		out = append(out, toOrderResponse(&list[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": out, "page": p.Page, "perPage": p.PerPage})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid order id")
		return
	}
	o, err := h.service.Get(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) kitchen(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	board, err := h.service.Kitchen(r.Context(), scope)
	if err != nil {
		h.logger.Error("kitchen board", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(board))
	for i := range board {
		out = append(out, toOrderResponse(&board[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": out})
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid order id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	perm, ok := statusPermission[req.Status]
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "unknown order status")
		return
	}
	if !h.gate.Authorize(w, r, perm) {
		return
	}
	tc := rbac.IdentityFromContext(r.Context())
	o, err := h.service.Transition(r.Context(), scope, tc.Principal.UserID, id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}
