package user_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-management/internal/core/datamodel/testdb"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/internal/user"
	userPostgres "github.com/frahmantamala/attendance-management/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

var _ = Describe("User Admin Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
		admin  *userDatamodel.User
		staff  *userDatamodel.User
	)

	do := func(method, path, body string) (*httptest.ResponseRecorder, response) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var res response
		Expect(json.Unmarshal(w.Body.Bytes(), &res)).To(Succeed())
		return w, res
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		dept := &userDatamodel.Department{Code: "GA", Name: "General Affairs", IsActive: true}
		Expect(db.Create(dept).Error).To(Succeed())
		adminRole := &userDatamodel.Role{Name: "admin", Permissions: capability.Admin()}
		Expect(db.Create(adminRole).Error).To(Succeed())
		Expect(db.Create(&userDatamodel.Role{Name: "manager", Permissions: capability.Manager()}).Error).To(Succeed())

		admin = &userDatamodel.User{EmployeeNumber: "0001", Email: "admin@example.com", Name: "Admin", PasswordHash: "x", DepartmentID: dept.ID, IsActive: true}
		staff = &userDatamodel.User{EmployeeNumber: "1001", Email: "staff@example.com", Name: "Staff", PasswordHash: "x", DepartmentID: dept.ID, IsActive: true}
		Expect(db.Create(admin).Error).To(Succeed())
		Expect(db.Create(staff).Error).To(Succeed())
		Expect(db.Create(&userDatamodel.UserRole{UserID: admin.ID, RoleID: adminRole.ID}).Error).To(Succeed())

		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc := user.NewService(userPostgres.NewUserRepository(db), slogger)
		h := user.NewHandler(transport.NewBaseHandler(slogger), svc)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUserID(r.Context(), admin.ID)))
			})
		})
		router.Get("/api/admin/users", h.ListUsers)
		router.Patch("/api/admin/users/{id}/activate", h.Activate)
		router.Patch("/api/admin/users/{id}/deactivate", h.Deactivate)
		router.Post("/api/admin/users/{id}/roles", h.AssignRole)
		router.Delete("/api/admin/users/{id}/roles/{role}", h.RevokeRole)
		router.Get("/api/admin/roles", h.ListRoles)
		router.Post("/api/admin/roles", h.CreateRole)
	})

	AfterEach(func() {
		testdb.Close(db)
	})

	It("lists users with their roles and never the hash", func() {
		w, res := do(http.MethodGet, "/api/admin/users?limit=10", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(string(res.Data)).NotTo(ContainSubstring("passwordHash"))

		var data user.UsersResponse
		Expect(json.Unmarshal(res.Data, &data)).To(Succeed())
		Expect(data.Total).To(Equal(int64(2)))
		Expect(data.Limit).To(Equal(10))
		Expect(data.Users[0].EmployeeNumber).To(Equal("0001"))
		Expect(data.Users[0].Roles).To(ConsistOf("admin"))
		Expect(data.Users[0].Department).To(Equal("General Affairs"))
	})

	It("deactivates and reactivates a user", func() {
		w, res := do(http.MethodPatch, "/api/admin/users/2/deactivate", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var u user.User
		Expect(json.Unmarshal(res.Data, &u)).To(Succeed())
		Expect(u.IsActive).To(BeFalse())

		w, res = do(http.MethodPatch, "/api/admin/users/2/activate", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(res.Data, &u)).To(Succeed())
		Expect(u.IsActive).To(BeTrue())
	})

	It("refuses to deactivate the acting admin", func() {
		w, _ := do(http.MethodPatch, "/api/admin/users/1/deactivate", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for unknown users and 400 for bad ids", func() {
		w, res := do(http.MethodPatch, "/api/admin/users/99/activate", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(res.Code).To(Equal("USER_NOT_FOUND"))

		w, _ = do(http.MethodPatch, "/api/admin/users/abc/activate", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("assigns a role idempotently and revokes it", func() {
		w, _ := do(http.MethodPost, "/api/admin/users/2/roles", `{"role":"manager"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		w, res := do(http.MethodPost, "/api/admin/users/2/roles", `{"role":"manager"}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		var u user.User
		Expect(json.Unmarshal(res.Data, &u)).To(Succeed())
		Expect(u.Roles).To(ConsistOf("manager"))

		w, res = do(http.MethodDelete, "/api/admin/users/2/roles/manager", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(res.Data, &u)).To(Succeed())
		Expect(u.Roles).To(BeEmpty())
	})

	It("returns 404 for an unknown role", func() {
		w, res := do(http.MethodPost, "/api/admin/users/2/roles", `{"role":"auditor"}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(res.Code).To(Equal("ROLE_NOT_FOUND"))
	})

	Describe("roles", func() {
		It("creates a role with a validated capability set", func() {
			w, res := do(http.MethodPost, "/api/admin/roles",
				`{"name":"Auditor","description":"read only","permissions":{"canViewAllAttendance":true}}`)
			Expect(w.Code).To(Equal(http.StatusCreated))

			var role user.Role
			Expect(json.Unmarshal(res.Data, &role)).To(Succeed())
			Expect(role.Name).To(Equal("auditor"))
			Expect(role.Permissions.CanViewAllAttendance).To(BeTrue())

			w, res = do(http.MethodGet, "/api/admin/roles", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			var list user.RolesResponse
			Expect(json.Unmarshal(res.Data, &list)).To(Succeed())
			Expect(list.Roles).To(HaveLen(3))
		})

		It("rejects unknown capability keys", func() {
			w, res := do(http.MethodPost, "/api/admin/roles", `{"name":"root","permissions":{"canDoAnything":true}}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(res.Code).To(Equal("VALIDATION_FAILED"))
		})

		It("rejects a duplicate name with 409", func() {
			w, res := do(http.MethodPost, "/api/admin/roles", `{"name":"admin","permissions":{}}`)
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(res.Code).To(Equal("ROLE_ALREADY_EXISTS"))
		})
	})
})
