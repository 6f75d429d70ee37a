package attendance

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/transport"
)

type ServiceAPI interface {
	ClockIn(ctx context.Context, userID int64) (*Daily, error)
	ClockOut(ctx context.Context, userID int64) (*Daily, error)
	Today(ctx context.Context, userID int64) (*Daily, error)
	Monthly(ctx context.Context, viewer Viewer, targetUserID int64, year, month int) (*Monthly, error)
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

// ClockIn handles POST /api/attendance/clock-in
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	daily, err := h.Service.ClockIn(r.Context(), p.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, daily, "Clocked in.")
}

// ClockOut handles POST /api/attendance/clock-out
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	daily, err := h.Service.ClockOut(r.Context(), p.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, daily, "Clocked out.")
}

// GetDaily handles GET /api/attendance/daily
func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	daily, err := h.Service.Today(r.Context(), p.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, daily, "")
}

// GetMonthly handles GET /api/attendance/monthly?year=&month=[&userId=]
func (h *Handler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		h.HandleServiceError(w, r, internal.NewValidationFieldError("year", "year must be a number", internal.ErrCodeInvalidDate))
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		h.HandleServiceError(w, r, internal.NewValidationFieldError("month", "month must be a number", internal.ErrCodeInvalidDate))
		return
	}

	var target int64
	if raw := q.Get("userId"); raw != "" {
		target, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || target <= 0 {
			h.HandleServiceError(w, r, internal.NewValidationFieldError("userId", "userId must be a positive number", internal.ErrCodeInvalidRequest))
			return
		}
	}

	viewer := Viewer{UserID: p.ID, DepartmentID: p.DepartmentID(), Capabilities: p.Capabilities}
	monthly, err := h.Service.Monthly(r.Context(), viewer, target, year, month)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, monthly, "")
}
