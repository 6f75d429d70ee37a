package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/attendance-management/internal/core/events"
)

// Contact is where applicant notifications are addressed.
type Contact struct {
	Name  string
	Email string
}

type ContactLookup interface {
	Contact(ctx context.Context, userID int64) (*Contact, error)
}

// EventHandler turns leave events into applicant notifications. Delivery is a structured log line.
type EventHandler struct {
	contacts ContactLookup
	logger   *slog.Logger
}

func NewEventHandler(contacts ContactLookup, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		contacts: contacts,
		logger:   logger,
	}
}

func (h *EventHandler) HandleLeaveEvent(ctx context.Context, event events.Event) error {
	leaveEvent, ok := event.(*events.LeaveDecisionEvent)
	if !ok {
		h.logger.Error("invalid event type for leave handler", "event_type", event.EventType())
		return fmt.Errorf("expected LeaveDecisionEvent, got %T", event)
	}

	contact, err := h.contacts.Contact(ctx, leaveEvent.ApplicantID)
	if err != nil {
		return fmt.Errorf("lookup applicant %d: %w", leaveEvent.ApplicantID, err)
	}
	if contact == nil {
		h.logger.Warn("applicant not found, notification dropped",
			"application_id", leaveEvent.ApplicationID,
			"applicant_id", leaveEvent.ApplicantID,
			"event_id", leaveEvent.EventID())
		return nil
	}

	var subject string
	switch leaveEvent.EventType() {
	case events.EventTypeLeaveApplied:
		subject = "Your leave application was received"
	case events.EventTypeLeaveApproved:
		subject = "Your leave application was approved"
	case events.EventTypeLeaveRejected:
		subject = "Your leave application was rejected"
	default:
		return fmt.Errorf("unhandled leave event type %s", leaveEvent.EventType())
	}

	h.logger.Info("leave notification sent",
		"to", contact.Email,
		"name", contact.Name,
		"subject", subject,
		"application_id", leaveEvent.ApplicationID,
		"duration_minutes", leaveEvent.DurationMinutes,
		"comment", leaveEvent.Comment,
		"event_id", leaveEvent.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	types := []string{events.EventTypeLeaveApplied, events.EventTypeLeaveApproved, events.EventTypeLeaveRejected}
	for _, t := range types {
		eventBus.Subscribe(t, h.HandleLeaveEvent)
	}

	h.logger.Info("leave event handlers registered", "handlers", types)
}
