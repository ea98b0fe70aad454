package repository

import (
	"context"
	"errors"
	"time"

	"bubble/internal/domain"
	"bubble/internal/models"

	"gorm.io/gorm"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, s *models.Schedule) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	var s models.Schedule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns a user's schedules, newest start time first, optionally
// filtered by status.
func (r *ScheduleRepository) ListByUser(ctx context.Context, userID string, status *domain.ScheduleStatus) ([]models.Schedule, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	var list []models.Schedule
	err := q.Order("start_time DESC").Find(&list).Error
	return list, err
}

// ListByStatus returns all schedules in the given status across users.
// Used by the stay-notification sweep.
func (r *ScheduleRepository) ListByStatus(ctx context.Context, status domain.ScheduleStatus) ([]models.Schedule, error) {
	var list []models.Schedule
	err := r.db.WithContext(ctx).Where("status = ?", string(status)).Find(&list).Error
	return list, err
}

// ListOverdue returns schedules in any of the given statuses whose end time
// is before the cutoff.
func (r *ScheduleRepository) ListOverdue(ctx context.Context, statuses []domain.ScheduleStatus, cutoff time.Time) ([]models.Schedule, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	var list []models.Schedule
	err := r.db.WithContext(ctx).
		Where("status IN ? AND end_time < ?", ss, cutoff).
		Find(&list).Error
	return list, err
}

// ListEndedBefore returns all schedules whose end time is before the cutoff,
// regardless of status. Used by the retention purge.
func (r *ScheduleRepository) ListEndedBefore(ctx context.Context, cutoff time.Time) ([]models.Schedule, error) {
	var list []models.Schedule
	err := r.db.WithContext(ctx).Where("end_time < ?", cutoff).Find(&list).Error
	return list, err
}

// Transition applies a status change only if the row is still in the
// expected source state. Returns false when the conditional update matched
// no row: the transition was lost to a concurrent writer and must be treated
// as a no-op, not an error.
func (r *ScheduleRepository) Transition(ctx context.Context, id string, from, to domain.ScheduleStatus, arrivedAt, departedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now().UTC(),
	}
	if arrivedAt != nil {
		updates["arrived_at"] = *arrivedAt
	}
	if departedAt != nil {
		updates["departed_at"] = *departedAt
	}
	tx := r.db.WithContext(ctx).
		Model(&models.Schedule{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *ScheduleRepository) Save(ctx context.Context, s *models.Schedule) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Schedule{}).Error
}
