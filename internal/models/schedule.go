package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"bubble/internal/domain"
)

// Schedule is one planned visit: a destination with a circular geofence,
// a time window and a recipient list for auto-notifications.
type Schedule struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:64;index;not null" json:"user_id"`

	DestinationName    string  `gorm:"size:100;not null" json:"destination_name"`
	DestinationAddress string  `gorm:"size:200" json:"destination_address"`
	DestinationLat     float64 `gorm:"type:decimal(10,8);not null" json:"destination_lat"`
	DestinationLng     float64 `gorm:"type:decimal(11,8);not null" json:"destination_lng"`
	GeofenceRadiusM    int     `gorm:"not null;default:50" json:"geofence_radius_m"`

	NotifyToUserIDs StringList `gorm:"type:text;not null" json:"notify_to_user_ids"`

	StartTime  time.Time `gorm:"not null;index" json:"start_time"`
	EndTime    time.Time `gorm:"not null;index" json:"end_time"`
	Recurrence *string   `gorm:"size:16" json:"recurrence,omitempty"`

	NotifyOnArrival    bool `gorm:"default:true" json:"notify_on_arrival"`
	NotifyAfterMinutes int  `gorm:"default:60" json:"notify_after_minutes"`
	NotifyOnDeparture  bool `gorm:"default:true" json:"notify_on_departure"`

	Status     string     `gorm:"size:16;not null;index" json:"status"`
	ArrivedAt  *time.Time `json:"arrived_at,omitempty"`
	DepartedAt *time.Time `json:"departed_at,omitempty"`
	Favorite   bool       `gorm:"default:false" json:"favorite"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// AfterFind rejects rows whose status is outside the closed enumeration.
// A bad value here is data corruption, not a request error.
func (s *Schedule) AfterFind(_ *gorm.DB) error {
	if _, err := domain.ParseScheduleStatus(s.Status); err != nil {
		return fmt.Errorf("schedule %s: %w", s.ID, err)
	}
	return nil
}

// LifecycleStatus returns the typed status. Callers run after AfterFind, so
// the value is already validated.
func (s *Schedule) LifecycleStatus() domain.ScheduleStatus {
	return domain.ScheduleStatus(s.Status)
}

// InWindow reports whether now falls inside [start_time, end_time].
func (s *Schedule) InWindow(now time.Time) bool {
	return !s.StartTime.After(now) && !s.EndTime.Before(now)
}
