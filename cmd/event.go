package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events through an in-process bus and inspect their payloads`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the event bus for testing and debugging. Known leave and auth types are built with their typed payloads.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventData          string
	eventUserID        int64
	eventApplicationID int64
)

func buildTestEvent(eventType string) events.Event {
	switch eventType {
	case events.EventTypeLeaveApplied:
		return events.NewLeaveAppliedEvent(eventApplicationID, eventUserID, 465)
	case events.EventTypeLeaveApproved:
		return events.NewLeaveApprovedEvent(eventApplicationID, eventUserID, 0, 465, eventData)
	case events.EventTypeLeaveRejected:
		return events.NewLeaveRejectedEvent(eventApplicationID, eventUserID, 0, 465, eventData)
	case events.EventTypeLoginFailed:
		return events.NewLoginFailedEvent(fmt.Sprintf("%04d", eventUserID), "127.0.0.1", "cli", eventData)
	case events.EventTypeLoginSucceeded:
		return events.NewLoginSucceededEvent(eventUserID, fmt.Sprintf("%04d", eventUserID), "127.0.0.1", "cli")
	default:
		return events.BaseEvent{
			ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"message": eventData,
				"source":  "cli-command",
			},
		}
	}
}

func publishTestEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	event := buildTestEvent(eventType)
	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	if err := eventBus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event message, comment or failure reason")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user-id", 2, "Applicant or user id carried by typed events")
	publishEventCmd.Flags().Int64Var(&eventApplicationID, "application-id", 1, "Leave application id carried by leave events")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
