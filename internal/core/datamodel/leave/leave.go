package leave

import (
	"time"

	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
)

type Application struct {
	ID              int64               `gorm:"primaryKey"`
	UserID          int64               `gorm:"column:user_id;not null;index"`
	LeaveType       string              `gorm:"column:leave_type;not null"`
	StartDate       time.Time           `gorm:"column:start_date;type:date;not null"`
	EndDate         time.Time           `gorm:"column:end_date;type:date;not null"`
	StartTime       *string             `gorm:"column:start_time"`
	EndTime         *string             `gorm:"column:end_time"`
	PartDayType     string              `gorm:"column:part_day_type;not null"`
	Reason          string              `gorm:"column:reason"`
	Status          string              `gorm:"column:status;not null;index"`
	DurationMinutes int                 `gorm:"column:duration_minutes;not null"`
	ApproverID      *int64              `gorm:"column:approver_id"`
	ApproverComment *string             `gorm:"column:approver_comment"`
	DecidedAt       *time.Time          `gorm:"column:decided_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	User            *userDatamodel.User `gorm:"foreignKey:UserID"`
}

func (Application) TableName() string {
	return "leave_applications"
}
