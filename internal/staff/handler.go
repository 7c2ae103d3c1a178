package staff

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Handler manages staff management endpoints.
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

// MountRoutes registers staff routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermUsersRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermUsersWrite))
		r.Post("/", h.create)
		r.Put("/{id}/active", h.setActive)
		r.Post("/{id}/roles/{roleID}", h.assignRole)
		r.Delete("/{id}/roles/{roleID}", h.removeRole)
	})
}

type memberResponse struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	IsActive  bool     `json:"isActive"`
	Roles     []string `json:"roles"`
}

func toMemberResponse(m *Member) memberResponse {
	roles := m.RoleNames
	if roles == nil {
		roles = []string{}
	}
	return memberResponse{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		IsActive:  m.IsActive,
		Roles:     roles,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	members, err := h.service.List(r.Context(), scope)
	if err != nil {
		h.logger.Error("list staff", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for i := range members {
		out = append(out, toMemberResponse(&members[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"staff": out})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid staff id")
		return
	}
	m, err := h.service.Get(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMemberResponse(m))
}

type createRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	RoleIDs   []int64 `json:"roleIds"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	m, err := h.service.Create(r.Context(), scope, actorID(r), CreateInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleIDs:   req.RoleIDs,
	})
	if err != nil {
		h.logger.Error("create staff", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMemberResponse(m))
}

type activeRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid staff id")
		return
	}
	var req activeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.service.SetActive(r.Context(), scope, actorID(r), id, req.IsActive); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"isActive": req.IsActive})
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	h.mutateRole(w, r, h.service.AssignRole)
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	h.mutateRole(w, r, h.service.RemoveRole)
}

func (h *Handler) mutateRole(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, scope rbac.TenantScope, staffID, roleID int64) error) {
	scope, err := rbac.RequireTenant(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid staff id")
		return
	}
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid role id")
		return
	}
	if err := fn(r.Context(), scope, id, roleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func actorID(r *http.Request) int64 {
	if tc := rbac.IdentityFromContext(r.Context()); tc != nil {
		return tc.Principal.UserID
	}
	return 0
}
