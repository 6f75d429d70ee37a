package attendance

import "time"

// Record is one employee's attendance for one calendar day. WorkDate is stored as UTC midnight of the local date.
type Record struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null;uniqueIndex:idx_attendance_user_date"`
	WorkDate    time.Time  `gorm:"column:work_date;type:date;not null;uniqueIndex:idx_attendance_user_date"`
	ClockIn     *time.Time `gorm:"column:clock_in"`
	ClockOut    *time.Time `gorm:"column:clock_out"`
	IsCorrected bool       `gorm:"column:is_corrected;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string {
	return "attendance_records"
}
