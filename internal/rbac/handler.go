package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/qrserve/qrserve/internal/platform/httpx"
	"github.com/qrserve/qrserve/internal/shared"
)

// Handler exposes role and permission management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers role and permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermPermissionsRead))
		r.Get("/permissions", h.listPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermRolesRead))
		r.Get("/roles", h.listRoles)
		r.Get("/roles/{id}/permissions", h.rolePermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermRolesWrite))
		r.Put("/roles/{id}/permissions", h.setRolePermissions)
	})
}

type permissionResponse struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Category    string `json:"category"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]permissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionResponse{ID: p.ID, Key: p.Key, Category: p.Category, Description: p.Description, IsActive: p.IsActive})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": out})
}

type roleResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	RestaurantID *int64 `json:"restaurantId,omitempty"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	tc := IdentityFromContext(r.Context())
	var restaurantID *int64
	if tc != nil {
		restaurantID = tc.Principal.RestaurantID
	}
	roles, err := h.service.ListRoles(r.Context(), restaurantID)
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{ID: role.ID, Name: role.Name, Description: role.Description, RestaurantID: role.RestaurantID})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (h *Handler) rolePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid role id")
		return
	}
	if _, err := h.roleInScope(r, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	keys, err := h.service.RolePermissionKeys(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roleId": id, "permissions": keys})
}

type setRolePermissionsRequest struct {
	PermissionIDs []int64 `json:"permissionIds"`
}

func (h *Handler) setRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "invalid role id")
		return
	}
	role, err := h.roleInScope(r, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	// Platform-wide templates are managed by the seeder, not the API.
	if role.RestaurantID == nil {
		httpx.Error(w, http.StatusForbidden, "Permission denied", "platform role templates are read-only")
		return
	}
	var req setRolePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid input", "malformed JSON body")
		return
	}
	if err := h.service.SetRolePermissions(r.Context(), id, req.PermissionIDs); err != nil {
		h.logger.Error("set role permissions", slog.Int64("role_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// roleInScope fetches a role and hides roles of other tenants behind
// ErrNotFound, so cross-tenant existence is not observable.
func (h *Handler) roleInScope(r *http.Request, id int64) (Role, error) {
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		return Role{}, err
	}
	if role.RestaurantID != nil {
		tc := IdentityFromContext(r.Context())
		if tc == nil || tc.Principal.RestaurantID == nil || *tc.Principal.RestaurantID != *role.RestaurantID {
			return Role{}, shared.ErrNotFound
		}
	}
	return role, nil
}
