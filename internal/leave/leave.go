package leave

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	PartDayFull = "FULL"
	PartDayAM   = "AM"
	PartDayPM   = "PM"
	PartDayTime = "TIME"
)

type Application struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	EmployeeName    string     `json:"employeeName,omitempty"`
	Type            string     `json:"type"`
	StartDate       string     `json:"startDate"`
	EndDate         string     `json:"endDate"`
	PartDayType     string     `json:"partDayType"`
	StartTime       *string    `json:"startTime,omitempty"`
	EndTime         *string    `json:"endTime,omitempty"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	DurationMinutes int        `json:"durationMinutes"`
	ApproverID      *int64     `json:"approverId,omitempty"`
	ApproverComment *string    `json:"approverComment,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type Balance struct {
	Year             int `json:"year"`
	UsedMinutes      int `json:"usedMinutes"`
	PendingMinutes   int `json:"pendingMinutes"`
	RemainingMinutes int `json:"remainingMinutes"`
	LimitMinutes     int `json:"limitMinutes"`
}

// ApplyInput is a validated leave request. Dates are YYYY-MM-DD and times HH:MM.
type ApplyInput struct {
	Type        string
	StartDate   string
	EndDate     string
	PartDayType string
	StartTime   *string
	EndTime     *string
	Reason      string
}

// Policy holds the minute quantities every duration is measured in.
type Policy struct {
	AnnualLimitMinutes int
	FullDayMinutes     int
}

// Duration computes the minutes a request consumes. FULL spans every day in the inclusive range;
// AM, PM and TIME apply to a single day.
func (p Policy) Duration(in ApplyInput, start, end time.Time) (int, *internal.AppError) {
	days := int(end.Sub(start).Hours()/24) + 1

	switch in.PartDayType {
	case PartDayFull:
		return p.FullDayMinutes * days, nil
	case PartDayAM, PartDayPM:
		if days != 1 {
			return 0, internal.NewValidationFieldError("endDate", "half day leave must start and end on the same day", internal.ErrCodeValidationFailed)
		}
		return p.FullDayMinutes / 2, nil
	case PartDayTime:
		if days != 1 {
			return 0, internal.NewValidationFieldError("endDate", "hourly leave must start and end on the same day", internal.ErrCodeValidationFailed)
		}
		if in.StartTime == nil || in.EndTime == nil {
			return 0, internal.NewValidationFieldError("startTime", "startTime and endTime are required for hourly leave", internal.ErrCodeValidationFailed)
		}
		from, err := time.Parse(validation.TimeLayout, *in.StartTime)
		if err != nil {
			return 0, internal.NewValidationFieldError("startTime", "startTime must be a time in HH:MM format", internal.ErrCodeValidationFailed)
		}
		to, err := time.Parse(validation.TimeLayout, *in.EndTime)
		if err != nil {
			return 0, internal.NewValidationFieldError("endTime", "endTime must be a time in HH:MM format", internal.ErrCodeValidationFailed)
		}
		if !to.After(from) {
			return 0, internal.NewValidationFieldError("endTime", "endTime must be after startTime", internal.ErrCodeValidationFailed)
		}
		return int(to.Sub(from) / time.Minute), nil
	default:
		return 0, internal.NewValidationFieldError("partDayType", "partDayType must be one of [FULL AM PM TIME]", internal.ErrCodeValidationFailed)
	}
}

func FromDataModel(a *leaveDatamodel.Application) *Application {
	out := &Application{
		ID:              a.ID,
		UserID:          a.UserID,
		Type:            a.LeaveType,
		StartDate:       a.StartDate.Format(validation.DateLayout),
		EndDate:         a.EndDate.Format(validation.DateLayout),
		PartDayType:     a.PartDayType,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Reason:          a.Reason,
		Status:          a.Status,
		DurationMinutes: a.DurationMinutes,
		ApproverID:      a.ApproverID,
		ApproverComment: a.ApproverComment,
		DecidedAt:       a.DecidedAt,
		CreatedAt:       a.CreatedAt,
	}
	if a.User != nil {
		out.EmployeeName = a.User.Name
	}
	return out
}
