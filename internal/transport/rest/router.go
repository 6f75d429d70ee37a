package rest

import (
	"net/http"

	"github.com/frahmantamala/attendance-management/api"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"github.com/frahmantamala/attendance-management/internal/organization"
	"github.com/frahmantamala/attendance-management/internal/transport/middleware"
	"github.com/frahmantamala/attendance-management/internal/transport/swagger"
	"github.com/frahmantamala/attendance-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	Organization *organization.Handler
	User         *user.Handler
	Attendance   *attendance.Handler
	Leave        *leave.Handler
}

type Options struct {
	AllowedOrigins []string
	// Contract validates requests against api/openapi.yml when set.
	Contract *middleware.OpenAPIValidator
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestLogging)
	if opts.Contract != nil {
		router.Use(opts.Contract.Middleware)
	}

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Organization != nil {
			r.Get("/departments", h.Organization.GetDepartments)
			r.Get("/positions", h.Organization.GetPositions)
		}

		if h.Auth == nil {
			return
		}

		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Post("/auth/logout", h.Auth.Logout)
			pr.Get("/auth/me", h.Auth.Me)
			pr.Post("/auth/password", h.Auth.ChangePassword)

			if h.Attendance != nil {
				pr.Route("/attendance", func(ar chi.Router) {
					ar.Post("/clock-in", h.Attendance.ClockIn)
					ar.Post("/clock-out", h.Attendance.ClockOut)
					ar.Get("/daily", h.Attendance.GetDaily)
					ar.Get("/monthly", h.Attendance.GetMonthly)
				})
			}

			if h.Leave != nil {
				pr.Route("/leaves", func(lr chi.Router) {
					lr.Post("/", h.Leave.Apply)
					lr.Get("/", h.Leave.List)
					lr.Get("/balance", h.Leave.GetBalance)
				})

				pr.Route("/manager/leaves", func(mr chi.Router) {
					mr.Use(h.Auth.RequireRoles(auth.RoleManager, auth.RoleAdmin))
					mr.Get("/", h.Leave.ListPending)
					mr.Post("/{id}/approve", h.Leave.Approve)
					mr.Post("/{id}/reject", h.Leave.Reject)
				})
			}

			if h.User != nil {
				pr.Route("/admin", func(ar chi.Router) {
					ar.Use(h.Auth.RequireRoles(auth.RoleAdmin))

					ar.Get("/users", h.User.ListUsers)
					ar.Patch("/users/{id}/activate", h.User.Activate)
					ar.Patch("/users/{id}/deactivate", h.User.Deactivate)
					ar.Post("/users/{id}/roles", h.User.AssignRole)
					ar.Delete("/users/{id}/roles/{role}", h.User.RevokeRole)

					ar.Get("/roles", h.User.ListRoles)
					ar.With(h.Auth.RequireCapability("canManageSystem", func(s capability.Set) bool {
						return s.CanManageSystem
					})).Post("/roles", h.User.CreateRole)
				})
			}
		})
	})
}
