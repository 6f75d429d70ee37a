package user

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal/core/capability"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
)

// User is the administrative view of an account. The password hash is never exposed.
type User struct {
	ID                  int64      `json:"id"`
	EmployeeNumber      string     `json:"employeeNumber"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	NameKana            string     `json:"nameKana"`
	Department          string     `json:"department"`
	Position            string     `json:"position,omitempty"`
	Roles               []string   `json:"roles"`
	IsActive            bool       `json:"isActive"`
	IsPasswordTemporary bool       `json:"isPasswordTemporary"`
	HireDate            *time.Time `json:"hireDate,omitempty"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
}

type Role struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Permissions capability.Set `json:"permissions"`
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func FromDataModel(u *userDatamodel.User) *User {
	out := &User{
		ID:                  u.ID,
		EmployeeNumber:      u.EmployeeNumber,
		Email:               u.Email,
		Name:                u.Name,
		NameKana:            u.NameKana,
		Roles:               u.RoleNames(),
		IsActive:            u.IsActive,
		IsPasswordTemporary: u.IsPasswordTemporary,
		HireDate:            u.HireDate,
		LastLoginAt:         u.LastLoginAt,
	}
	if u.Department != nil {
		out.Department = u.Department.Name
	}
	if u.Position != nil {
		out.Position = u.Position.Name
	}
	return out
}

func RoleFromDataModel(r *userDatamodel.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
	}
}
