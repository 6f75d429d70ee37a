package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoginSucceeded = "auth.login_succeeded"
	EventTypeLoginFailed    = "auth.login_failed"
)

// LoginAttemptEvent records the outcome of a login. It never carries the submitted password.
type LoginAttemptEvent struct {
	BaseEvent
	EmployeeNumber string `json:"employee_number"`
	UserID         int64  `json:"user_id,omitempty"`
	IPAddress      string `json:"ip_address"`
	UserAgent      string `json:"user_agent"`
	Reason         string `json:"reason,omitempty"`
}

func NewLoginSucceededEvent(userID int64, employeeNumber, ip, userAgent string) *LoginAttemptEvent {
	return newLoginAttemptEvent(EventTypeLoginSucceeded, userID, employeeNumber, ip, userAgent, "")
}

func NewLoginFailedEvent(employeeNumber, ip, userAgent, reason string) *LoginAttemptEvent {
	return newLoginAttemptEvent(EventTypeLoginFailed, 0, employeeNumber, ip, userAgent, reason)
}

func newLoginAttemptEvent(eventType string, userID int64, employeeNumber, ip, userAgent, reason string) *LoginAttemptEvent {
	data := map[string]interface{}{
		"employee_number": employeeNumber,
		"ip_address":      ip,
		"user_agent":      userAgent,
	}
	if userID != 0 {
		data["user_id"] = userID
	}
	if reason != "" {
		data["reason"] = reason
	}

	return &LoginAttemptEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		EmployeeNumber: employeeNumber,
		UserID:         userID,
		IPAddress:      ip,
		UserAgent:      userAgent,
		Reason:         reason,
	}
}
