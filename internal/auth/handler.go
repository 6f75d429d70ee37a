package auth

import (
	"errors"
	"net"
	"net/http"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/common/validation"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/pkg/logger"
)

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

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.ReadJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.Login(r.Context(), LoginInput{
		EmployeeNumber: req.EmployeeNumber,
		Password:       req.Password,
		IPAddress:      clientIP(r),
		UserAgent:      r.UserAgent(),
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, result, result.Message)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client simply discards it.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if p, ok := ProfileFromContext(r.Context()); ok {
		logger.From(r.Context()).Info("user logged out", "user_id", p.ID)
	}
	h.WriteSuccess(w, http.StatusOK, nil, "Logged out.")
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}
	h.WriteSuccess(w, http.StatusOK, p, "")
}

// ChangePassword handles POST /api/auth/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := ProfileFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	var req ChangePasswordRequest
	if err := h.ReadJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, nil, "Password changed.")
}

// AuthMiddleware verifies the bearer token, reloads the user and attaches the profile to the request context.
// A valid token for a missing or deactivated user is rejected with 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, r, internal.ErrUnauthenticated)
			return
		}

		claims, err := h.Service.VerifyToken(token)
		if err != nil {
			h.HandleServiceError(w, r, internal.ErrInvalidToken)
			return
		}

		profile, err := h.Service.LoadProfile(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, internal.ErrUserNotFound) {
				h.HandleServiceError(w, r, internal.NewUnauthorizedError("User not found", internal.ErrCodeUserNotFound))
				return
			}
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := ContextWithProfile(r.Context(), profile)
		ctx = internal.ContextWithUserID(ctx, profile.ID)
		ctx = logger.With(ctx, "userID", profile.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
