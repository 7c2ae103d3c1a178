package payments

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Handler manages payment endpoints.
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

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermPaymentsRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermPaymentsRecord))
		r.Post("/", h.record)
	})
}

type paymentResponse struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"orderId"`
	AmountCents int64     `json:"amountCents"`
	Method      Method    `json:"method"`
	ReceiptPath string    `json:"receiptPath,omitempty"`
	RecordedAt  time.Time `json:"recordedAt"`
}

func toPaymentResponse(p *Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		AmountCents: p.AmountCents,
		Method:      p.Method,
		ReceiptPath: p.ReceiptPath,
		RecordedAt:  p.RecordedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	p := shared.NewPagination(page, perPage, 0)

	list, err := h.service.List(r.Context(), scope, p)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]paymentResponse, 0, len(list))
	for i := range list {
		out = append(out, toPaymentResponse(&list[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": out, "page": p.Page, "perPage": p.PerPage})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid payment id")
		return
	}
	p, err := h.service.Get(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaymentResponse(p))
}

type recordRequest struct {
	OrderID int64  `json:"orderId" validate:"required"`
	Method  Method `json:"method" validate:"required,oneof=cash card"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	tc := rbac.IdentityFromContext(r.Context())
	var actorID int64
	if tc != nil {
		actorID = tc.Principal.UserID
	}
	key := r.Header.Get("Idempotency-Key")
	p, err := h.service.Record(r.Context(), scope, actorID, req.OrderID, req.Method, key)
	if err != nil {
		h.logger.Error("record payment", slog.Any("error", err), slog.Int64("order", req.OrderID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPaymentResponse(p))
}
