package models

import "time"

// LocationSample is one reported position. Written once per location push,
// read-only afterward, reaped once AutoDeleteAt has passed.
type LocationSample struct {
	ID         string   `gorm:"primaryKey;size:36" json:"id"`
	UserID     string   `gorm:"size:64;index;not null" json:"user_id"`
	ScheduleID *string  `gorm:"size:36;index" json:"schedule_id,omitempty"`
	Latitude   float64  `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude  float64  `gorm:"type:decimal(11,8);not null" json:"longitude"`
	AccuracyM  *float64 `gorm:"type:decimal(8,2)" json:"accuracy_m,omitempty"`

	RecordedAt   time.Time `gorm:"not null;index" json:"recorded_at"`
	AutoDeleteAt time.Time `gorm:"not null;index" json:"auto_delete_at"`
}

func (LocationSample) TableName() string {
	return "location_history"
}
