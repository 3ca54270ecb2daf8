package domain

import "time"

// NotificationKind enumerates notification severities.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
	NotificationWarning NotificationKind = "warning"
)

// NotificationDetail is one labelled line of a structured payload.
type NotificationDetail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Notification is the single user-facing outcome message.
type Notification struct {
	ID        string
	Kind      NotificationKind
	Message   string
	Details   []NotificationDetail
	CreatedAt time.Time
	TTL       time.Duration
}
