package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/attendance-management/internal/core/capability"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type DepartmentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type PositionRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Profile is the authenticated user as seen by handlers. It is rebuilt from the store on every request.
type Profile struct {
	ID                  int64          `json:"id"`
	EmployeeNumber      string         `json:"employeeNumber"`
	Email               string         `json:"email"`
	Name                string         `json:"name"`
	NameKana            string         `json:"nameKana"`
	Department          *DepartmentRef `json:"department"`
	Position            *PositionRef   `json:"position,omitempty"`
	Roles               []string       `json:"roles"`
	Capabilities        capability.Set `json:"permissions"`
	IsPasswordTemporary bool           `json:"isPasswordTemporary"`
	LastLoginAt         *time.Time     `json:"lastLoginAt,omitempty"`
}

func (p *Profile) HasAnyRole(roles ...string) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// DepartmentID returns 0 when the profile has no department loaded.
func (p *Profile) DepartmentID() int64 {
	if p.Department == nil {
		return 0
	}
	return p.Department.ID
}

// Account is a profile plus the credential fields that never leave the auth package.
type Account struct {
	Profile
	PasswordHash string
	IsActive     bool
}

// Claims is the signed token payload. Roles reflect the role set at issuance.
type Claims struct {
	UserID         int64    `json:"userId"`
	EmployeeNumber string   `json:"employeeNumber"`
	Email          string   `json:"email"`
	Roles          []string `json:"roles"`
	jwt.RegisteredClaims
}

type LoginInput struct {
	EmployeeNumber string
	Password       string
	IPAddress      string
	UserAgent      string
}

type LoginResult struct {
	Token   string   `json:"token"`
	User    *Profile `json:"user"`
	Message string   `json:"message"`
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(claims Claims) (string, error)
	Verify(token string) (*Claims, error)
}

// Repository loads active accounts. Missing or deactivated users yield internal.ErrUserNotFound.
type Repository interface {
	FindActiveByEmployeeNumber(ctx context.Context, employeeNumber string) (*Account, error)
	FindActiveByID(ctx context.Context, id int64) (*Account, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, temporary bool) error
}

// AttemptTracker counts failed logins per employee number and reports active locks.
type AttemptTracker interface {
	Locked(ctx context.Context, key string) (until time.Time, locked bool, err error)
	RegisterFailure(ctx context.Context, key string) (until time.Time, locked bool, err error)
	Reset(ctx context.Context, key string) error
}

// AuditRecorder receives login outcomes. Implementations must never see the password.
type AuditRecorder interface {
	LoginSucceeded(ctx context.Context, profile *Profile, ip, userAgent string)
	LoginFailed(ctx context.Context, employeeNumber, ip, userAgent, reason string)
}

type ServiceAPI interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	VerifyToken(token string) (*Claims, error)
	LoadProfile(ctx context.Context, userID int64) (*Profile, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
}
