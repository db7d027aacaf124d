package model

// NotificationType categorizes a broadcast.
type NotificationType string

const (
	NotifyAnnouncement NotificationType = "announcement"
	NotifyResource     NotificationType = "resource"
	NotifyAlert        NotificationType = "alert"
	NotifyUpdate       NotificationType = "update"
	NotifyMaintenance  NotificationType = "maintenance"
	NotifyEvent        NotificationType = "event"
)

// NotificationTypes lists the selectable types in display order.
var NotificationTypes = []NotificationType{
	NotifyAnnouncement, NotifyResource, NotifyAlert, NotifyUpdate, NotifyMaintenance, NotifyEvent,
}

var notificationLabels = map[NotificationType]string{
	NotifyAnnouncement: "Announcement",
	NotifyResource:     "New Resource",
	NotifyAlert:        "Alert",
	NotifyUpdate:       "Update",
	NotifyMaintenance:  "Maintenance",
	NotifyEvent:        "Event",
}

// Label returns the human readable name of the type.
func (t NotificationType) Label() string {
	if l, ok := notificationLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is one of the known types.
func (t NotificationType) Valid() bool {
	_, ok := notificationLabels[t]
	return ok
}

// Notification is the broadcast payload.
type Notification struct {
	Title   string           `json:"title" validate:"required"`
	Message string           `json:"message" validate:"required"`
	Type    NotificationType `json:"type" validate:"required"`
}
