package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	"github.com/frahmantamala/attendance-management/internal/core/common/validation"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
)

// RepositoryAPI returns nil, nil when a record does not exist.
type RepositoryAPI interface {
	GetByUserAndDate(ctx context.Context, userID int64, workDate time.Time) (*attendanceDatamodel.Record, error)
	ListByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]*attendanceDatamodel.Record, error)
	Create(ctx context.Context, record *attendanceDatamodel.Record) error
	Update(ctx context.Context, record *attendanceDatamodel.Record) error
	UserDepartmentID(ctx context.Context, userID int64) (int64, error)
}

// Viewer is the caller of a read operation, with the capabilities that widen its scope.
type Viewer struct {
	UserID       int64
	DepartmentID int64
	Capabilities capability.Set
}

type Service struct {
	repo   RepositoryAPI
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo RepositoryAPI, loc *time.Location, logger *slog.Logger, opts ...ServiceOption) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		repo:   repo,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ClockIn(ctx context.Context, userID int64) (*Daily, error) {
	now := s.now().In(s.loc)
	workDate := WorkDate(now, s.loc)

	record, err := s.repo.GetByUserAndDate(ctx, userID, workDate)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}

	switch {
	case record == nil:
		record = &attendanceDatamodel.Record{UserID: userID, WorkDate: workDate, ClockIn: &now}
		if err := s.repo.Create(ctx, record); err != nil {
			// a concurrent clock-in may have won the unique (user, date) key
			if existing, getErr := s.repo.GetByUserAndDate(ctx, userID, workDate); getErr == nil && existing != nil && existing.ClockIn != nil {
				return nil, internal.ErrAlreadyClockedIn
			}
			return nil, internal.NewInternalError("failed to record clock-in", err)
		}
	case record.ClockIn != nil:
		return nil, internal.ErrAlreadyClockedIn
	default:
		record.ClockIn = &now
		if err := s.repo.Update(ctx, record); err != nil {
			return nil, internal.NewInternalError("failed to record clock-in", err)
		}
	}

	s.logger.InfoContext(ctx, "clocked in", "user_id", userID, "work_date", workDate.Format(validation.DateLayout))
	return s.toDaily(workDate, record), nil
}

func (s *Service) ClockOut(ctx context.Context, userID int64) (*Daily, error) {
	now := s.now().In(s.loc)
	workDate := WorkDate(now, s.loc)

	record, err := s.repo.GetByUserAndDate(ctx, userID, workDate)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}
	if record == nil || record.ClockIn == nil {
		return nil, internal.ErrNotClockedIn
	}
	if record.ClockOut != nil {
		return nil, internal.ErrAlreadyClockedOut
	}

	record.ClockOut = &now
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, internal.NewInternalError("failed to record clock-out", err)
	}

	s.logger.InfoContext(ctx, "clocked out", "user_id", userID, "work_date", workDate.Format(validation.DateLayout))
	return s.toDaily(workDate, record), nil
}

// Today returns today's punches; both are nil when nothing was recorded.
func (s *Service) Today(ctx context.Context, userID int64) (*Daily, error) {
	workDate := WorkDate(s.now(), s.loc)
	record, err := s.repo.GetByUserAndDate(ctx, userID, workDate)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}
	return s.toDaily(workDate, record), nil
}

// Monthly lists the target user's records for a calendar month. Viewing another user requires
// canViewAllAttendance, or canViewDepartmentAttendance within the viewer's department.
func (s *Service) Monthly(ctx context.Context, viewer Viewer, targetUserID int64, year, month int) (*Monthly, error) {
	if year < 2000 || year > 2100 {
		return nil, internal.NewValidationFieldError("year", "year must be between 2000 and 2100", internal.ErrCodeInvalidDate)
	}
	if month < 1 || month > 12 {
		return nil, internal.NewValidationFieldError("month", "month must be between 1 and 12", internal.ErrCodeInvalidDate)
	}
	if targetUserID == 0 {
		targetUserID = viewer.UserID
	}
	if err := s.authorizeView(ctx, viewer, targetUserID); err != nil {
		return nil, err
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	records, err := s.repo.ListByUserBetween(ctx, targetUserID, from, to)
	if err != nil {
		return nil, internal.NewInternalError("failed to list attendance", err)
	}

	out := &Monthly{UserID: targetUserID, Year: year, Month: month, Records: make([]MonthlyEntry, 0, len(records))}
	for _, r := range records {
		entry := MonthlyEntry{
			Date:           r.WorkDate.Format(validation.DateLayout),
			ClockIn:        s.local(r.ClockIn),
			ClockOut:       s.local(r.ClockOut),
			WorkingMinutes: WorkingMinutes(r.ClockIn, r.ClockOut),
			RateSegments:   []RateSegment{},
			IsCorrected:    r.IsCorrected,
		}
		if r.ClockIn != nil && r.ClockOut != nil {
			entry.RateSegments = ComputeRateSegments(*r.ClockIn, *r.ClockOut, s.loc)
		}
		out.Total += entry.WorkingMinutes
		out.Records = append(out.Records, entry)
	}
	return out, nil
}

func (s *Service) authorizeView(ctx context.Context, viewer Viewer, targetUserID int64) error {
	if targetUserID == viewer.UserID || viewer.Capabilities.CanViewAllAttendance {
		return nil
	}
	if !viewer.Capabilities.CanViewDepartmentAttendance {
		return internal.ErrForbidden
	}

	deptID, err := s.repo.UserDepartmentID(ctx, targetUserID)
	if err != nil {
		return internal.NewInternalError("failed to load user department", err)
	}
	if deptID == 0 {
		return internal.ErrUserNotFound
	}
	if deptID != viewer.DepartmentID {
		return internal.ErrForbidden
	}
	return nil
}

func (s *Service) toDaily(workDate time.Time, record *attendanceDatamodel.Record) *Daily {
	d := &Daily{Date: workDate.Format(validation.DateLayout)}
	if record != nil {
		d.ClockIn = s.local(record.ClockIn)
		d.ClockOut = s.local(record.ClockOut)
	}
	return d
}

func (s *Service) local(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	l := t.In(s.loc)
	return &l
}
