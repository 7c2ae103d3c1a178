package orders

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qrserve/qrserve/internal/menu"
	"github.com/qrserve/qrserve/internal/observability"
	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/tables"
)

// PublicHandler serves the guest-facing QR surface. Nothing here requires a
// session: the table's QR token is the only credential, and it grants exactly
// the ability to read the menu, place an order and watch that order's status.
type PublicHandler struct {
	logger   *slog.Logger
	orders   *Service
	tables   *tables.Service
	menu     *menu.Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewPublicHandler builds a PublicHandler instance. metrics may be nil.
func NewPublicHandler(logger *slog.Logger, orders *Service, tableSvc *tables.Service, menuSvc *menu.Service, metrics *observability.Metrics) *PublicHandler {
	return &PublicHandler{logger: logger, orders: orders, tables: tableSvc, menu: menuSvc, metrics: metrics, validate: validator.New()}
}

// MountRoutes registers the public routes under a /t/{token} prefix.
func (h *PublicHandler) MountRoutes(r chi.Router) {
	r.Get("/menu", h.showMenu)
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.orderStatus)
}

func (h *PublicHandler) resolveTable(w http.ResponseWriter, r *http.Request) (*tables.Table, bool) {
	token := chi.URLParam(r, "token")
	t, err := h.tables.ResolveQRToken(r.Context(), token)
	if err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	return t, true
}

type publicMenuItem struct {
	ID          int64  `json:"id"`
	CategoryID  *int64 `json:"categoryId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents"`
}

func (h *PublicHandler) showMenu(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolveTable(w, r)
	if !ok {
		return
	}
	items, err := h.menu.PublicMenu(r.Context(), t.RestaurantID)
	if err != nil {
		h.logger.Error("public menu", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]publicMenuItem, 0, len(items))
	for _, it := range items {
		out = append(out, publicMenuItem{
			ID:          it.ID,
			CategoryID:  it.CategoryID,
			Name:        it.Name,
			Description: it.Description,
			PriceCents:  it.PriceCents,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"table": t.Label, "items": out})
}

type placeOrderRequest struct {
	Note  string `json:"note" validate:"max=500"`
	Lines []struct {
		MenuItemID int64 `json:"menuItemId" validate:"required"`
		Quantity   int   `json:"quantity" validate:"required,min=1"`
	} `json:"lines" validate:"required,min=1,dive"`
}

type publicOrderResponse struct {
	ID         int64          `json:"id"`
	Status     Status         `json:"status"`
	TotalCents int64          `json:"totalCents"`
	Lines      []lineResponse `json:"lines"`
	PlacedAt   time.Time      `json:"placedAt"`
}

func toPublicOrderResponse(o *Order) publicOrderResponse {
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
	return publicOrderResponse{ID: o.ID, Status: o.Status, TotalCents: o.TotalCents, Lines: lines, PlacedAt: o.PlacedAt}
}

func (h *PublicHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolveTable(w, r)
	if !ok {
		return
	}
	var req placeOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	lines := make([]PlacedLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, PlacedLine{MenuItemID: l.MenuItemID, Quantity: l.Quantity})
	}
	o, err := h.orders.Place(r.Context(), t.RestaurantID, t.ID, req.Note, lines)
	if err != nil {
		h.logger.Error("place order", slog.Any("error", err), slog.Int64("table", t.ID))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.OrderPlaced()
	httpx.JSON(w, http.StatusCreated, toPublicOrderResponse(o))
}

func (h *PublicHandler) orderStatus(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolveTable(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid order id")
		return
	}
	o, err := h.orders.GetForTable(r.Context(), t.RestaurantID, t.ID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPublicOrderResponse(o))
}
