package auth

import (
	"net/http"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	"github.com/frahmantamala/attendance-management/pkg/logger"
)

// RequireRoles admits the request when the authenticated profile holds at least one of roles.
// It must run after AuthMiddleware.
func (h *Handler) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := ProfileFromContext(r.Context())
			if !ok || p == nil {
				logger.From(r.Context()).Warn("authorization check failed: profile not found in context")
				h.WriteAppError(w, internal.ErrUnauthenticated)
				return
			}

			if !p.HasAnyRole(roles...) {
				logger.From(r.Context()).Warn("access denied: role required",
					"user_id", p.ID,
					"required_roles", roles,
					"user_roles", p.Roles)
				h.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability admits the request when allow returns true for the profile's merged capability set.
func (h *Handler) RequireCapability(name string, allow func(capability.Set) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := ProfileFromContext(r.Context())
			if !ok || p == nil {
				h.WriteAppError(w, internal.ErrUnauthenticated)
				return
			}

			if !allow(p.Capabilities) {
				logger.From(r.Context()).Warn("access denied: capability required",
					"user_id", p.ID,
					"required_capability", name)
				h.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
