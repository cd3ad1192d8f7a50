package models

import "time"

// NotificationKind selects how a notification is styled
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// DefaultNotificationDuration is how long a notification stays visible when
// the caller does not say otherwise.
const DefaultNotificationDuration = 3000 * time.Millisecond

// Valid reports whether k is one of the known kinds
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationInfo, NotificationSuccess, NotificationError:
		return true
	}
	return false
}

// Notification is a short-lived status message (toast).
type Notification struct {
	ID        int64            `json:"id"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	Duration  time.Duration    `json:"duration"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Profile is the static signed-in identity shown in the header.
type Profile struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	LoggedIn bool   `json:"loggedIn"`
}
