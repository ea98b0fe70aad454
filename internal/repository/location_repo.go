package repository

import (
	"context"
	"time"

	"bubble/internal/models"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, sample *models.LocationSample) error {
	return r.db.WithContext(ctx).Create(sample).Error
}

// ListByUser returns the user's most recent samples, newest first.
func (r *LocationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.LocationSample, error) {
	var list []models.LocationSample
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// LatestByUser returns the most recent sample, or nil when none exists.
func (r *LocationRepository) LatestByUser(ctx context.Context, userID string) (*models.LocationSample, error) {
	list, err := r.ListByUser(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *LocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("auto_delete_at <= ?", now).
		Delete(&models.LocationSample{})
	return tx.RowsAffected, tx.Error
}

func (r *LocationRepository) DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Delete(&models.LocationSample{})
	return tx.RowsAffected, tx.Error
}

func (r *LocationRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.LocationSample{}).
		Where("auto_delete_at <= ?", now).
		Count(&n).Error
	return n, err
}
