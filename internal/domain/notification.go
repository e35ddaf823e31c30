package domain

import "time"

// NotificationKind classifies a transient status message.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationWarning NotificationKind = "warning"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient, self-expiring status message. At most one is
// live at a time; posting a new one replaces the old outright.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}
