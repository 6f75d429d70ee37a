package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) GetByUserAndDate(ctx context.Context, userID int64, workDate time.Time) (*attendanceDatamodel.Record, error) {
	var rec attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date = ?", userID, workDate).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *AttendanceRepository) ListByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]*attendanceDatamodel.Record, error) {
	var records []*attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date >= ? AND work_date <= ?", userID, from, to).
		Order("work_date ASC").
		Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) Create(ctx context.Context, record *attendanceDatamodel.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *AttendanceRepository) Update(ctx context.Context, record *attendanceDatamodel.Record) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// UserDepartmentID returns 0 for unknown users.
func (r *AttendanceRepository) UserDepartmentID(ctx context.Context, userID int64) (int64, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select("id", "department_id").Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return u.DepartmentID, nil
}
