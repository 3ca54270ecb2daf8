package events

import (
	"time"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted EventType = "complaint_submitted"
	EventTaskAssigned       EventType = "task_assigned"
	EventTaskStatusChanged  EventType = "task_status_changed"
	EventUserSignedUp       EventType = "user_signed_up"
	EventPasswordReset      EventType = "password_reset_requested"
)

// Actor identifies who triggered an event.
type Actor struct {
	Role   domain.Role `json:"role"`
	UserID string      `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TaskID    string      `json:"task_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	Type           string              `json:"type"`
	Priority       domain.TaskPriority `json:"priority"`
	Email          string              `json:"email"`
	ContactNumber  string              `json:"contact_number"`
	ResolutionHint string              `json:"resolution_hint"`
}

// TaskAssignedPayload payload.
type TaskAssignedPayload struct {
	WorkerID   string              `json:"worker_id"`
	WorkerName string              `json:"worker_name"`
	Priority   domain.TaskPriority `json:"priority"`
	Email      string              `json:"email,omitempty"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
	Progress  int               `json:"progress"`
	Email     string            `json:"email,omitempty"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// PasswordResetPayload payload.
type PasswordResetPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}
