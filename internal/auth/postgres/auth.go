package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.Repository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) FindActiveByEmployeeNumber(ctx context.Context, employeeNumber string) (*auth.Account, error) {
	return r.findActive(ctx, "employee_number = ?", employeeNumber)
}

func (r *AuthRepository) FindActiveByID(ctx context.Context, id int64) (*auth.Account, error) {
	return r.findActive(ctx, "id = ?", id)
}

func (r *AuthRepository) findActive(ctx context.Context, cond string, arg interface{}) (*auth.Account, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Position").
		Preload("Roles").
		Where(cond, arg).
		Where("is_active = ?", true).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return ToAccount(&u), nil
}

func (r *AuthRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *AuthRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, temporary bool) error {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"password_hash":         passwordHash,
			"is_password_temporary": temporary,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// ToAccount maps a user row with preloaded associations to the auth view.
func ToAccount(u *userDatamodel.User) *auth.Account {
	acct := &auth.Account{
		Profile: auth.Profile{
			ID:                  u.ID,
			EmployeeNumber:      u.EmployeeNumber,
			Email:               u.Email,
			Name:                u.Name,
			NameKana:            u.NameKana,
			Roles:               u.RoleNames(),
			Capabilities:        u.Capabilities(),
			IsPasswordTemporary: u.IsPasswordTemporary,
			LastLoginAt:         u.LastLoginAt,
		},
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}
	if u.Department != nil {
		acct.Department = &auth.DepartmentRef{ID: u.Department.ID, Name: u.Department.Name, Code: u.Department.Code}
	}
	if u.Position != nil {
		acct.Position = &auth.PositionRef{ID: u.Position.ID, Name: u.Position.Name, Level: u.Position.Level}
	}
	return acct
}
