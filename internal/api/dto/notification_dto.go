package dto

import (
	"time"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// NotificationResponse is the active notification slot.
type NotificationResponse struct {
	ID        string                      `json:"id"`
	Kind      domain.NotificationKind     `json:"kind"`
	Message   string                      `json:"message"`
	Details   []domain.NotificationDetail `json:"details,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	ExpiresAt time.Time                   `json:"expires_at"`
}

// NewNotificationResponse maps a notification.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		Message:   n.Message,
		Details:   n.Details,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.CreatedAt.Add(n.TTL),
	}
}
