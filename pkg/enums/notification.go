package enums

import "fmt"

// NotificationKind maps to the notification_kind enum in Postgres.
type NotificationKind string

const (
	NotificationKindNewTask  NotificationKind = "new_task"
	NotificationKindReminder NotificationKind = "reminder"
	NotificationKindUpdate   NotificationKind = "update"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindNewTask,
	NotificationKindReminder,
	NotificationKindUpdate,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}

// NotificationState is unread until the recipient marks it read.
type NotificationState string

const (
	NotificationStateUnread NotificationState = "unread"
	NotificationStateRead   NotificationState = "read"
)

func (n NotificationState) IsValid() bool {
	return n == NotificationStateUnread || n == NotificationStateRead
}
