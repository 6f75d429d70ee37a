package user

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal/core/capability"
)

type Department struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Department) TableName() string {
	return "departments"
}

type Position struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	Level     int       `gorm:"column:level;not null"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}

// Role permissions are stored as a JSON object and decoded into the closed capability set.
type Role struct {
	ID          int64          `gorm:"primaryKey"`
	Name        string         `gorm:"column:name;uniqueIndex;not null"`
	Description string         `gorm:"column:description"`
	Permissions capability.Set `gorm:"column:permissions;serializer:json;type:text"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}

type UserRole struct {
	UserID     int64     `gorm:"column:user_id;primaryKey"`
	RoleID     int64     `gorm:"column:role_id;primaryKey"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

type User struct {
	ID                  int64       `gorm:"primaryKey"`
	EmployeeNumber      string      `gorm:"column:employee_number;uniqueIndex;not null"`
	Email               string      `gorm:"column:email;uniqueIndex;not null"`
	Name                string      `gorm:"column:name;not null"`
	NameKana            string      `gorm:"column:name_kana"`
	PasswordHash        string      `gorm:"column:password_hash;not null"`
	DepartmentID        int64       `gorm:"column:department_id;not null"`
	PositionID          *int64      `gorm:"column:position_id"`
	HireDate            *time.Time  `gorm:"column:hire_date"`
	IsActive            bool        `gorm:"column:is_active;not null"`
	IsPasswordTemporary bool        `gorm:"column:is_password_temporary;not null"`
	LastLoginAt         *time.Time  `gorm:"column:last_login_at"`
	CreatedAt           time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time   `gorm:"column:updated_at;autoUpdateTime"`
	Department          *Department `gorm:"foreignKey:DepartmentID"`
	Position            *Position   `gorm:"foreignKey:PositionID"`
	Roles               []Role      `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
}

func (User) TableName() string {
	return "users"
}

// RoleNames returns the names of the preloaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Capabilities returns the union of the preloaded roles' capability sets.
func (u *User) Capabilities() capability.Set {
	var set capability.Set
	for _, r := range u.Roles {
		set = set.Merge(r.Permissions)
	}
	return set
}
