package user

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/common/validation"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*User, int64, error)
	SetActive(ctx context.Context, actorID, userID int64, active bool) (*User, error)
	AssignRole(ctx context.Context, actorID, userID int64, roleName string) (*User, error)
	RevokeRole(ctx context.Context, actorID, userID int64, roleName string) (*User, error)
	ListRoles(ctx context.Context) ([]*Role, error)
	CreateRole(ctx context.Context, name, description string, permissions json.RawMessage) (*Role, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// ListUsers handles GET /api/admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	users, total, err := h.Service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, UsersResponse{Users: users, Total: total, Limit: limit, Offset: offset}, "")
}

// Activate handles PATCH /api/admin/users/{id}/activate
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles PATCH /api/admin/users/{id}/deactivate
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := userIDParam(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.SetActive(r.Context(), internal.UserIDFromContext(r.Context()), id, active)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	message := "User deactivated."
	if active {
		message = "User activated."
	}
	h.WriteSuccess(w, http.StatusOK, u, message)
}

// AssignRole handles POST /api/admin/users/{id}/roles
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var req AssignRoleRequest
	if err := h.ReadJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.AssignRole(r.Context(), internal.UserIDFromContext(r.Context()), id, req.Role)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, u, "Role assigned. It takes effect at the user's next login.")
}

// RevokeRole handles DELETE /api/admin/users/{id}/roles/{role}
func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.RevokeRole(r.Context(), internal.UserIDFromContext(r.Context()), id, chi.URLParam(r, "role"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, u, "Role revoked. It takes effect at the user's next login.")
}

// ListRoles handles GET /api/admin/roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, RolesResponse{Roles: roles}, "")
}

// CreateRole handles POST /api/admin/roles
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := h.ReadJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	role, err := h.Service.CreateRole(r.Context(), req.Name, req.Description, req.Permissions)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, role, "Role created.")
}

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationError("invalid user id", internal.ErrCodeInvalidRequest)
	}
	return id, nil
}
