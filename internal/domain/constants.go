package domain

import "fmt"

// ScheduleStatus is the lifecycle state of a schedule. Transitions only move
// forward: active -> arrived -> completed, or active|arrived -> expired.
type ScheduleStatus string

const (
	StatusActive    ScheduleStatus = "active"
	StatusArrived   ScheduleStatus = "arrived"
	StatusCompleted ScheduleStatus = "completed"
	StatusExpired   ScheduleStatus = "expired"
)

// ParseScheduleStatus validates a status string read from the store or a
// request. Unknown values are an error, never silently accepted.
func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	switch ScheduleStatus(s) {
	case StatusActive, StatusArrived, StatusCompleted, StatusExpired:
		return ScheduleStatus(s), nil
	}
	return "", fmt.Errorf("unknown schedule status %q", s)
}

// Terminal reports whether no further transitions are allowed from s.
func (s ScheduleStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

// NotificationType classifies an auto-notification.
type NotificationType string

const (
	NotificationArrival   NotificationType = "arrival"
	NotificationStay      NotificationType = "stay"
	NotificationDeparture NotificationType = "departure"
)

func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotificationArrival, NotificationStay, NotificationDeparture:
		return NotificationType(s), nil
	}
	return "", fmt.Errorf("unknown notification type %q", s)
}

// GeofenceEventType is the direction of a geofence boundary crossing.
type GeofenceEventType string

const (
	EventEntry GeofenceEventType = "entry"
	EventExit  GeofenceEventType = "exit"
)

// RecurrenceType is advisory metadata on a schedule; it is not expanded into
// multiple instances.
type RecurrenceType string

const (
	RecurrenceDaily    RecurrenceType = "daily"
	RecurrenceWeekdays RecurrenceType = "weekdays"
	RecurrenceWeekends RecurrenceType = "weekends"
)

func ParseRecurrenceType(s string) (RecurrenceType, error) {
	switch RecurrenceType(s) {
	case RecurrenceDaily, RecurrenceWeekdays, RecurrenceWeekends:
		return RecurrenceType(s), nil
	}
	return "", fmt.Errorf("unknown recurrence type %q", s)
}

// Geofence and retention bounds shared between validation and services.
const (
	MinGeofenceRadiusM     = 10
	MaxGeofenceRadiusM     = 500
	DefaultGeofenceRadiusM = 50

	MinNotifyAfterMinutes     = 1
	MaxNotifyAfterMinutes     = 1440
	DefaultNotifyAfterMinutes = 60

	RetentionHours = 24
)
