package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/attendance-management/internal/core/events"
)

const (
	auditLoginSuccess = "LOGIN_SUCCESS"
	auditLoginFailure = "LOGIN_FAILURE"
)

// EventAuditRecorder writes login outcomes to the log and publishes them on the event bus.
type EventAuditRecorder struct {
	logger *slog.Logger
	bus    *events.EventBus
}

func NewEventAuditRecorder(logger *slog.Logger, bus *events.EventBus) *EventAuditRecorder {
	return &EventAuditRecorder{logger: logger, bus: bus}
}

func (a *EventAuditRecorder) LoginSucceeded(ctx context.Context, profile *Profile, ip, userAgent string) {
	a.logger.InfoContext(ctx, auditLoginSuccess,
		"user_id", profile.ID,
		"employee_number", profile.EmployeeNumber,
		"ip_address", ip,
		"user_agent", userAgent,
		"password_temporary", profile.IsPasswordTemporary)

	if a.bus != nil {
		if err := a.bus.Publish(ctx, events.NewLoginSucceededEvent(profile.ID, profile.EmployeeNumber, ip, userAgent)); err != nil {
			a.logger.ErrorContext(ctx, "failed to publish login event", "error", err)
		}
	}
}

func (a *EventAuditRecorder) LoginFailed(ctx context.Context, employeeNumber, ip, userAgent, reason string) {
	a.logger.WarnContext(ctx, auditLoginFailure,
		"employee_number", employeeNumber,
		"ip_address", ip,
		"user_agent", userAgent,
		"reason", reason)

	if a.bus != nil {
		if err := a.bus.Publish(ctx, events.NewLoginFailedEvent(employeeNumber, ip, userAgent, reason)); err != nil {
			a.logger.ErrorContext(ctx, "failed to publish login event", "error", err)
		}
	}
}
