package postgres

import (
	"context"
	"errors"
	"time"

	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

// WithUserLock takes a row lock on the applicant on postgres. sqlite serializes writers on its own.
func (r *LeaveRepository) WithUserLock(ctx context.Context, userID int64, fn func(tx leave.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			var u userDatamodel.User
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").
				Where("id = ?", userID).
				First(&u).Error
			if err != nil {
				return err
			}
		}
		return fn(&LeaveRepository{db: tx})
	})
}

func (r *LeaveRepository) Create(ctx context.Context, app *leaveDatamodel.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leaveDatamodel.Application, error) {
	var app leaveDatamodel.Application
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *LeaveRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*leaveDatamodel.Application, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&leaveDatamodel.Application{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []*leaveDatamodel.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error
	return apps, total, err
}

// SumMinutes totals applications whose start date falls in year.
func (r *LeaveRepository) SumMinutes(ctx context.Context, userID int64, year int, statuses ...string) (int, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var sum int
	err := r.db.WithContext(ctx).
		Model(&leaveDatamodel.Application{}).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Where("user_id = ? AND status IN ? AND start_date >= ? AND start_date < ?", userID, statuses, from, to).
		Scan(&sum).Error
	return sum, err
}

// ListPending returns every pending application when departmentID is 0.
func (r *LeaveRepository) ListPending(ctx context.Context, departmentID int64) ([]*leaveDatamodel.Application, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("leave_applications.status = ?", leave.StatusPending)
	if departmentID != 0 {
		q = q.Joins("JOIN users ON users.id = leave_applications.user_id").
			Where("users.department_id = ?", departmentID)
	}

	var apps []*leaveDatamodel.Application
	err := q.Order("leave_applications.created_at ASC, leave_applications.id ASC").Find(&apps).Error
	return apps, err
}

func (r *LeaveRepository) Decide(ctx context.Context, id int64, status string, approverID int64, comment *string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&leaveDatamodel.Application{}).
		Where("id = ? AND status = ?", id, leave.StatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"approver_id":      approverID,
			"approver_comment": comment,
			"decided_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ContactRepository resolves notification addresses for leave events.
type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) leave.ContactLookup {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Contact(ctx context.Context, userID int64) (*leave.Contact, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select("id", "name", "email").Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leave.Contact{Name: u.Name, Email: u.Email}, nil
}
