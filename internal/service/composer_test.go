package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bubble/internal/domain"
)

func TestComposerMapLink(t *testing.T) {
	c := NewComposer("https://www.google.com/maps")
	link := c.MapLink(35.681236, 139.767125)
	assert.Equal(t, "https://www.google.com/maps?q=35.681236,139.767125", link)
}

func TestComposerMessages(t *testing.T) {
	c := NewComposer("https://www.google.com/maps")
	at := time.Date(2026, 8, 29, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "Yuki has arrived at School\nArrived at 09:05", c.ArrivalMessage("Yuki", "School", at))
	assert.Equal(t, "Yuki has been at School for 1h 5m", c.StayMessage("Yuki", "School", 65))
	assert.Equal(t, "Yuki has left School\nDeparted at 09:05", c.DepartureMessage("Yuki", "School", at))
}

func TestComposerTitle(t *testing.T) {
	c := NewComposer("")
	assert.Equal(t, "Yuki arrived", c.Title(domain.NotificationArrival, "Yuki"))
	assert.Equal(t, "Yuki is staying", c.Title(domain.NotificationStay, "Yuki"))
	assert.Equal(t, "Yuki departed", c.Title(domain.NotificationDeparture, "Yuki"))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "1h 5m", FormatMinutes(65))
	assert.Equal(t, "0m", FormatMinutes(0))
}
