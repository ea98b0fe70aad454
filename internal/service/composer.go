package service

import (
	"fmt"
	"strconv"
	"time"

	"bubble/internal/domain"
)

// Composer builds the notification message templates and the shareable map
// link. Fully deterministic given its inputs; no I/O.
type Composer struct {
	mapBaseURL string
}

func NewComposer(mapBaseURL string) *Composer {
	return &Composer{mapBaseURL: mapBaseURL}
}

// MapLink returns <base>?q=<lat>,<lng>.
func (c *Composer) MapLink(lat, lng float64) string {
	return c.mapBaseURL + "?q=" +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(lng, 'f', -1, 64)
}

func (c *Composer) ArrivalMessage(userName, destination string, at time.Time) string {
	return fmt.Sprintf("%s has arrived at %s\nArrived at %s", userName, destination, at.Format("15:04"))
}

func (c *Composer) StayMessage(userName, destination string, stayMinutes int) string {
	return fmt.Sprintf("%s has been at %s for %s", userName, destination, FormatMinutes(stayMinutes))
}

func (c *Composer) DepartureMessage(userName, destination string, at time.Time) string {
	return fmt.Sprintf("%s has left %s\nDeparted at %s", userName, destination, at.Format("15:04"))
}

func (c *Composer) Title(typ domain.NotificationType, userName string) string {
	switch typ {
	case domain.NotificationArrival:
		return userName + " arrived"
	case domain.NotificationStay:
		return userName + " is staying"
	case domain.NotificationDeparture:
		return userName + " departed"
	}
	return userName
}

// FormatMinutes renders a dwell duration as "1h 5m", "2h" or "45m".
func FormatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
