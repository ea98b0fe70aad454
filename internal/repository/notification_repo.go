package repository

import (
	"context"
	"time"

	"bubble/internal/domain"
	"bubble/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, h *models.NotificationHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// ExistsForSchedule reports whether any history row of the given type exists
// for the schedule. This is the dedup key for stay notifications.
func (r *NotificationRepository) ExistsForSchedule(ctx context.Context, scheduleID string, typ domain.NotificationType) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.NotificationHistory{}).
		Where("schedule_id = ? AND type = ?", scheduleID, string(typ)).
		Count(&n).Error
	return n > 0, err
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string, limit, offset int) ([]models.NotificationHistory, error) {
	var list []models.NotificationHistory
	err := r.db.WithContext(ctx).
		Where("to_user_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *NotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("auto_delete_at <= ?", now).
		Delete(&models.NotificationHistory{})
	return tx.RowsAffected, tx.Error
}

func (r *NotificationRepository) DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Delete(&models.NotificationHistory{})
	return tx.RowsAffected, tx.Error
}

func (r *NotificationRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.NotificationHistory{}).
		Where("auto_delete_at <= ?", now).
		Count(&n).Error
	return n, err
}
