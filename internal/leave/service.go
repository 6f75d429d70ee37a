package leave

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	"github.com/frahmantamala/attendance-management/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/attendance-management/internal/core/events"
)

// RepositoryAPI returns nil, nil for missing rows.
type RepositoryAPI interface {
	// WithUserLock runs fn in a transaction that serializes writers for the same user.
	WithUserLock(ctx context.Context, userID int64, fn func(tx RepositoryAPI) error) error
	Create(ctx context.Context, app *leaveDatamodel.Application) error
	GetByID(ctx context.Context, id int64) (*leaveDatamodel.Application, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*leaveDatamodel.Application, int64, error)
	SumMinutes(ctx context.Context, userID int64, year int, statuses ...string) (int, error)
	ListPending(ctx context.Context, departmentID int64) ([]*leaveDatamodel.Application, error)
	// Decide moves a pending application to status and reports false when it was no longer pending.
	Decide(ctx context.Context, id int64, status string, approverID int64, comment *string, at time.Time) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Approver is the caller of a decision. DepartmentID scopes the decision unless CanApproveAll is set.
type Approver struct {
	UserID       int64
	DepartmentID int64
	Capabilities capability.Set
}

type Service struct {
	repo      RepositoryAPI
	policy    Policy
	publisher EventPublisher
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo RepositoryAPI, policy Policy, publisher EventPublisher, loc *time.Location, logger *slog.Logger, opts ...ServiceOption) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		repo:      repo,
		policy:    policy,
		publisher: publisher,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply files a pending application after checking it against the yearly limit.
// Approved and pending minutes both count toward the limit.
func (s *Service) Apply(ctx context.Context, userID int64, in ApplyInput) (*Application, error) {
	v := validation.NewValidator()
	v.Field("type", in.Type).Required().MaxLength(50)
	v.Field("startDate", in.StartDate).Required().Date()
	v.Field("endDate", in.EndDate).Required().Date()
	v.Field("startTime", in.StartTime).ClockTime()
	v.Field("endTime", in.EndTime).ClockTime()
	if err := v.Validate(); err != nil {
		return nil, err
	}

	start, _ := time.Parse(validation.DateLayout, in.StartDate)
	end, _ := time.Parse(validation.DateLayout, in.EndDate)
	if end.Before(start) {
		return nil, internal.NewValidationFieldError("endDate", "endDate must not be before startDate", internal.ErrCodeInvalidDate)
	}

	minutes, appErr := s.policy.Duration(in, start, end)
	if appErr != nil {
		return nil, appErr
	}

	app := &leaveDatamodel.Application{
		UserID:          userID,
		LeaveType:       strings.TrimSpace(in.Type),
		StartDate:       start,
		EndDate:         end,
		PartDayType:     in.PartDayType,
		Reason:          in.Reason,
		Status:          StatusPending,
		DurationMinutes: minutes,
	}
	if in.PartDayType == PartDayTime {
		app.StartTime = in.StartTime
		app.EndTime = in.EndTime
	}

	err := s.repo.WithUserLock(ctx, userID, func(tx RepositoryAPI) error {
		booked, err := tx.SumMinutes(ctx, userID, start.Year(), StatusApproved, StatusPending)
		if err != nil {
			return internal.NewInternalError("failed to sum leave minutes", err)
		}
		if booked+minutes > s.policy.AnnualLimitMinutes {
			return internal.ErrLeaveLimitExceeded.WithDetails(map[string]int{
				"bookedMinutes":    booked,
				"requestedMinutes": minutes,
				"limitMinutes":     s.policy.AnnualLimitMinutes,
			})
		}
		if err := tx.Create(ctx, app); err != nil {
			return internal.NewInternalError("failed to create leave application", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "leave applied", "application_id", app.ID, "user_id", userID, "minutes", minutes)
	s.publish(ctx, events.NewLeaveAppliedEvent(app.ID, userID, minutes))
	return FromDataModel(app), nil
}

// ListOwn returns the caller's applications, newest first.
func (s *Service) ListOwn(ctx context.Context, userID int64, limit, offset int) ([]*Application, int64, error) {
	rows, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list leave applications", err)
	}
	out := make([]*Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

// Balance reports the current local year's usage.
func (s *Service) Balance(ctx context.Context, userID int64) (*Balance, error) {
	year := s.now().In(s.loc).Year()

	used, err := s.repo.SumMinutes(ctx, userID, year, StatusApproved)
	if err != nil {
		return nil, internal.NewInternalError("failed to sum leave minutes", err)
	}
	pending, err := s.repo.SumMinutes(ctx, userID, year, StatusPending)
	if err != nil {
		return nil, internal.NewInternalError("failed to sum leave minutes", err)
	}

	remaining := s.policy.AnnualLimitMinutes - used - pending
	if remaining < 0 {
		remaining = 0
	}
	return &Balance{
		Year:             year,
		UsedMinutes:      used,
		PendingMinutes:   pending,
		RemainingMinutes: remaining,
		LimitMinutes:     s.policy.AnnualLimitMinutes,
	}, nil
}

// ListPending returns pending applications oldest first, within the approver's department
// unless they hold canApproveAll.
func (s *Service) ListPending(ctx context.Context, approver Approver) ([]*Application, error) {
	if !approver.Capabilities.CanApprove() {
		return nil, internal.ErrForbidden
	}

	dept := approver.DepartmentID
	if approver.Capabilities.CanApproveAll {
		dept = 0
	}

	rows, err := s.repo.ListPending(ctx, dept)
	if err != nil {
		return nil, internal.NewInternalError("failed to list pending applications", err)
	}
	out := make([]*Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Approve(ctx context.Context, approver Approver, id int64, comment *string) (*Application, error) {
	return s.decide(ctx, approver, id, StatusApproved, comment)
}

// Reject requires a non-empty comment.
func (s *Service) Reject(ctx context.Context, approver Approver, id int64, comment *string) (*Application, error) {
	v := validation.NewValidator()
	v.Field("comment", comment).Required()
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return s.decide(ctx, approver, id, StatusRejected, comment)
}

func (s *Service) decide(ctx context.Context, approver Approver, id int64, status string, comment *string) (*Application, error) {
	if !approver.Capabilities.CanApprove() {
		return nil, internal.ErrForbidden
	}

	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load leave application", err)
	}
	if app == nil {
		return nil, internal.ErrLeaveNotFound
	}
	if app.UserID == approver.UserID {
		return nil, internal.ErrSelfApproval
	}
	if !approver.Capabilities.CanApproveAll {
		if app.User == nil || app.User.DepartmentID != approver.DepartmentID {
			return nil, internal.ErrOutOfScope
		}
	}
	if app.Status != StatusPending {
		return nil, internal.ErrInvalidLeaveStatus
	}

	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		comment = &trimmed
		if trimmed == "" {
			comment = nil
		}
	}

	now := s.now()
	ok, err := s.repo.Decide(ctx, id, status, approver.UserID, comment, now)
	if err != nil {
		return nil, internal.NewInternalError("failed to record decision", err)
	}
	if !ok {
		return nil, internal.ErrInvalidLeaveStatus
	}

	app.Status = status
	app.ApproverID = &approver.UserID
	app.ApproverComment = comment
	app.DecidedAt = &now

	var text string
	if comment != nil {
		text = *comment
	}
	s.logger.InfoContext(ctx, "leave decided", "application_id", id, "status", status, "approver_id", approver.UserID)
	if status == StatusApproved {
		s.publish(ctx, events.NewLeaveApprovedEvent(id, app.UserID, approver.UserID, app.DurationMinutes, text))
	} else {
		s.publish(ctx, events.NewLeaveRejectedEvent(id, app.UserID, approver.UserID, app.DurationMinutes, text))
	}
	return FromDataModel(app), nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
