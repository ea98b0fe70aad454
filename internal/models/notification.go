package models

import "time"

// NotificationHistory is the durable record of one dispatched notification,
// one row per recipient. It is the source of truth for "did we try": rows
// are written even when push delivery fails, and the existence of a stay row
// for a schedule suppresses further stay notifications.
type NotificationHistory struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	FromUserID string `gorm:"size:64;index;not null" json:"from_user_id"`
	ToUserID   string `gorm:"size:64;index;not null" json:"to_user_id"`
	ScheduleID string `gorm:"size:36;index;not null" json:"schedule_id"`
	Type       string `gorm:"size:16;not null" json:"type"`
	Message    string `gorm:"type:text" json:"message"`
	MapLink    string `gorm:"size:512" json:"map_link"`

	SentAt       time.Time `gorm:"not null;index" json:"sent_at"`
	AutoDeleteAt time.Time `gorm:"not null;index" json:"auto_delete_at"`
}

func (NotificationHistory) TableName() string {
	return "notification_history"
}
