// Package seed loads the reference data and the two initial accounts. Running it twice changes nothing.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal/core/capability"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the initial password of every seeded account.
const DefaultPassword = "password123"

type Department struct {
	Code string
	Name string
}

type Position struct {
	Code  string
	Name  string
	Level int
}

type Role struct {
	Name        string
	Description string
	Permissions capability.Set
}

type User struct {
	EmployeeNumber string
	Email          string
	Name           string
	NameKana       string
	DepartmentCode string
	PositionCode   string
	HireDate       time.Time
	Roles          []string
}

type Dataset struct {
	Departments []Department
	Positions   []Position
	Roles       []Role
	Users       []User
}

// Default is the initial municipal dataset: two departments, two positions, three roles, an admin and an employee.
func Default() Dataset {
	return Dataset{
		Departments: []Department{
			{Code: "GA", Name: "総務課"},
			{Code: "PL", Name: "企画課"},
		},
		Positions: []Position{
			{Code: "MGR", Name: "課長", Level: 3},
			{Code: "STAFF", Name: "職員", Level: 1},
		},
		Roles: []Role{
			{Name: "admin", Description: "システム管理者", Permissions: capability.Admin()},
			{Name: "manager", Description: "管理者", Permissions: capability.Manager()},
			{Name: "employee", Description: "一般職員", Permissions: capability.Employee()},
		},
		Users: []User{
			{
				EmployeeNumber: "0001",
				Email:          "admin@example.com",
				Name:           "管理者",
				NameKana:       "カンリシャ",
				DepartmentCode: "GA",
				PositionCode:   "MGR",
				HireDate:       time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC),
				Roles:          []string{"admin"},
			},
			{
				EmployeeNumber: "1001",
				Email:          "tanaka@example.com",
				Name:           "田中太郎",
				NameKana:       "タナカタロウ",
				DepartmentCode: "GA",
				PositionCode:   "STAFF",
				HireDate:       time.Date(2021, time.April, 1, 0, 0, 0, 0, time.UTC),
				Roles:          []string{"employee"},
			},
		},
	}
}

// Result counts rows actually inserted.
type Result struct {
	Departments int
	Positions   int
	Roles       int
	Users       int
	UserRoles   int
}

type Seeder struct {
	db         *sqlx.DB
	bcryptCost int
	logger     *slog.Logger
	now        func() time.Time
}

func NewSeeder(db *sqlx.DB, bcryptCost int, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, bcryptCost: bcryptCost, logger: logger, now: time.Now}
}

// Run inserts whatever part of data is missing inside one transaction. Existing rows, passwords included, are left alone.
func (s *Seeder) Run(ctx context.Context, data Dataset) (*Result, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC()
	res := &Result{}

	for _, d := range data.Departments {
		n, err := exec(ctx, tx, `INSERT INTO departments (code, name, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT (code) DO NOTHING`,
			d.Code, d.Name, true, now, now)
		if err != nil {
			return nil, fmt.Errorf("insert department %s: %w", d.Code, err)
		}
		res.Departments += n
	}

	for _, p := range data.Positions {
		n, err := exec(ctx, tx, `INSERT INTO positions (code, name, level, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (code) DO NOTHING`,
			p.Code, p.Name, p.Level, true, now, now)
		if err != nil {
			return nil, fmt.Errorf("insert position %s: %w", p.Code, err)
		}
		res.Positions += n
	}

	for _, r := range data.Roles {
		perms, err := json.Marshal(r.Permissions)
		if err != nil {
			return nil, fmt.Errorf("encode permissions for %s: %w", r.Name, err)
		}
		n, err := exec(ctx, tx, `INSERT INTO roles (name, description, permissions, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT (name) DO NOTHING`,
			r.Name, r.Description, string(perms), now, now)
		if err != nil {
			return nil, fmt.Errorf("insert role %s: %w", r.Name, err)
		}
		res.Roles += n
	}

	for _, u := range data.Users {
		deptID, err := lookupID(ctx, tx, `SELECT id FROM departments WHERE code = ?`, u.DepartmentCode)
		if err != nil {
			return nil, fmt.Errorf("department %s for user %s: %w", u.DepartmentCode, u.EmployeeNumber, err)
		}
		var posID *int64
		if u.PositionCode != "" {
			id, err := lookupID(ctx, tx, `SELECT id FROM positions WHERE code = ?`, u.PositionCode)
			if err != nil {
				return nil, fmt.Errorf("position %s for user %s: %w", u.PositionCode, u.EmployeeNumber, err)
			}
			posID = &id
		}

		n, err := exec(ctx, tx, `INSERT INTO users (employee_number, email, name, name_kana, password_hash, department_id,
				position_id, hire_date, is_active, is_password_temporary, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (employee_number) DO NOTHING`,
			u.EmployeeNumber, u.Email, u.Name, u.NameKana, string(hash), deptID,
			posID, u.HireDate, true, false, now, now)
		if err != nil {
			return nil, fmt.Errorf("insert user %s: %w", u.EmployeeNumber, err)
		}
		res.Users += n

		userID, err := lookupID(ctx, tx, `SELECT id FROM users WHERE employee_number = ?`, u.EmployeeNumber)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", u.EmployeeNumber, err)
		}
		for _, role := range u.Roles {
			roleID, err := lookupID(ctx, tx, `SELECT id FROM roles WHERE name = ?`, role)
			if err != nil {
				return nil, fmt.Errorf("role %s for user %s: %w", role, u.EmployeeNumber, err)
			}
			n, err := exec(ctx, tx, `INSERT INTO user_roles (user_id, role_id, assigned_at)
				VALUES (?, ?, ?) ON CONFLICT (user_id, role_id) DO NOTHING`,
				userID, roleID, now)
			if err != nil {
				return nil, fmt.Errorf("assign role %s to user %s: %w", role, u.EmployeeNumber, err)
			}
			res.UserRoles += n
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit seed transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "seed completed",
		"departments", res.Departments,
		"positions", res.Positions,
		"roles", res.Roles,
		"users", res.Users,
		"user_roles", res.UserRoles)
	return res, nil
}

// Clear removes every row the application owns, children first.
func (s *Seeder) Clear(ctx context.Context) error {
	tables := []string{"leave_applications", "attendance_records", "user_roles", "users", "roles", "positions", "departments"}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "seed data cleared", "tables", tables)
	return nil
}

func exec(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (int, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func lookupID(ctx context.Context, tx *sqlx.Tx, query string, arg interface{}) (int64, error) {
	var id int64
	if err := tx.GetContext(ctx, &id, tx.Rebind(query), arg); err != nil {
		return 0, err
	}
	return id, nil
}
