package models

import (
	"time"

	"bubble/internal/domain"
)

// User is the minimal account row this service needs: display name for
// message composition, FCM device tokens for push delivery, and per-type
// notification preferences. Account lifecycle itself is owned elsewhere.
type User struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"`
	Email           string     `gorm:"size:255;uniqueIndex" json:"email"`
	Username        string     `gorm:"size:50" json:"username"`
	DisplayName     string     `gorm:"size:50" json:"display_name"`
	ProfileImageURL string     `gorm:"size:512" json:"profile_image_url"`
	FCMTokens       StringList `gorm:"type:text" json:"-"`

	// Per-type opt-outs for received auto-notifications.
	NotifyArrivalEnabled   bool `gorm:"default:true" json:"notify_arrival_enabled"`
	NotifyStayEnabled      bool `gorm:"default:true" json:"notify_stay_enabled"`
	NotifyDepartureEnabled bool `gorm:"default:true" json:"notify_departure_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// AllowsNotification reports whether the user accepts auto-notifications of
// the given type. Unknown types are rejected.
func (u *User) AllowsNotification(t domain.NotificationType) bool {
	switch t {
	case domain.NotificationArrival:
		return u.NotifyArrivalEnabled
	case domain.NotificationStay:
		return u.NotifyStayEnabled
	case domain.NotificationDeparture:
		return u.NotifyDepartureEnabled
	}
	return false
}
