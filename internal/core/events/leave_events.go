package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveApplied  = "leave.applied"
	EventTypeLeaveApproved = "leave.approved"
	EventTypeLeaveRejected = "leave.rejected"
)

type LeaveDecisionEvent struct {
	BaseEvent
	ApplicationID   int64  `json:"application_id"`
	ApplicantID     int64  `json:"applicant_id"`
	ApproverID      int64  `json:"approver_id,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	Comment         string `json:"comment,omitempty"`
}

func NewLeaveAppliedEvent(applicationID, applicantID int64, durationMinutes int) *LeaveDecisionEvent {
	return newLeaveEvent(EventTypeLeaveApplied, applicationID, applicantID, 0, durationMinutes, "")
}

func NewLeaveApprovedEvent(applicationID, applicantID, approverID int64, durationMinutes int, comment string) *LeaveDecisionEvent {
	return newLeaveEvent(EventTypeLeaveApproved, applicationID, applicantID, approverID, durationMinutes, comment)
}

func NewLeaveRejectedEvent(applicationID, applicantID, approverID int64, durationMinutes int, comment string) *LeaveDecisionEvent {
	return newLeaveEvent(EventTypeLeaveRejected, applicationID, applicantID, approverID, durationMinutes, comment)
}

func newLeaveEvent(eventType string, applicationID, applicantID, approverID int64, durationMinutes int, comment string) *LeaveDecisionEvent {
	return &LeaveDecisionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"application_id":   applicationID,
				"applicant_id":     applicantID,
				"approver_id":      approverID,
				"duration_minutes": durationMinutes,
				"comment":          comment,
			},
		},
		ApplicationID:   applicationID,
		ApplicantID:     applicantID,
		ApproverID:      approverID,
		DurationMinutes: durationMinutes,
		Comment:         comment,
	}
}
