package leave

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/core/common/validation"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Apply(ctx context.Context, userID int64, in ApplyInput) (*Application, error)
	ListOwn(ctx context.Context, userID int64, limit, offset int) ([]*Application, int64, error)
	Balance(ctx context.Context, userID int64) (*Balance, error)
	ListPending(ctx context.Context, approver Approver) ([]*Application, error)
	Approve(ctx context.Context, approver Approver, id int64, comment *string) (*Application, error)
	Reject(ctx context.Context, approver Approver, id int64, comment *string) (*Application, error)
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

// Apply handles POST /api/leaves
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	var req ApplyRequest
	if err := h.ReadJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	app, err := h.Service.Apply(r.Context(), p.ID, req.ToInput())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, app, "Leave application submitted.")
}

// List handles GET /api/leaves
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	limit, offset := h.Pagination(r)
	apps, total, err := h.Service.ListOwn(r.Context(), p.ID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, ApplicationsResponse{Applications: apps, Total: total, Limit: limit, Offset: offset}, "")
}

// GetBalance handles GET /api/leaves/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	balance, err := h.Service.Balance(r.Context(), p.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, balance, "")
}

// ListPending handles GET /api/manager/leaves
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	approver, ok := approverFromRequest(r)
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	apps, err := h.Service.ListPending(r.Context(), approver)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, PendingResponse{Applications: apps}, "")
}

// Approve handles POST /api/manager/leaves/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject handles POST /api/manager/leaves/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	approver, ok := approverFromRequest(r)
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.HandleServiceError(w, r, internal.NewValidationError("invalid leave application id", internal.ErrCodeInvalidRequest))
		return
	}

	// approve accepts an empty body
	var req DecisionRequest
	if r.ContentLength != 0 {
		if err := h.ReadJSON(w, r, &req); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		if err := validation.Struct(req); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
	}

	var app *Application
	message := "Leave application approved."
	if approve {
		app, err = h.Service.Approve(r.Context(), approver, id, req.Comment)
	} else {
		app, err = h.Service.Reject(r.Context(), approver, id, req.Comment)
		message = "Leave application rejected."
	}
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, app, message)
}

func approverFromRequest(r *http.Request) (Approver, bool) {
	p, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		return Approver{}, false
	}
	return Approver{UserID: p.ID, DepartmentID: p.DepartmentID(), Capabilities: p.Capabilities}, true
}
