package service

import (
	"context"
	"time"

	"bubble/internal/domain"
	"bubble/internal/models"
)

// Store capabilities consumed by the services. The gorm repositories in
// internal/repository implement them; tests substitute in-memory fakes.

type ScheduleStore interface {
	Create(ctx context.Context, s *models.Schedule) error
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	ListByUser(ctx context.Context, userID string, status *domain.ScheduleStatus) ([]models.Schedule, error)
	ListByStatus(ctx context.Context, status domain.ScheduleStatus) ([]models.Schedule, error)
	ListOverdue(ctx context.Context, statuses []domain.ScheduleStatus, cutoff time.Time) ([]models.Schedule, error)
	ListEndedBefore(ctx context.Context, cutoff time.Time) ([]models.Schedule, error)
	Transition(ctx context.Context, id string, from, to domain.ScheduleStatus, arrivedAt, departedAt *time.Time) (bool, error)
	Save(ctx context.Context, s *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type LocationStore interface {
	Create(ctx context.Context, sample *models.LocationSample) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.LocationSample, error)
	LatestByUser(ctx context.Context, userID string) (*models.LocationSample, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error)
	CountExpired(ctx context.Context, now time.Time) (int64, error)
}

type HistoryStore interface {
	Create(ctx context.Context, h *models.NotificationHistory) error
	ExistsForSchedule(ctx context.Context, scheduleID string, typ domain.NotificationType) (bool, error)
	ListByRecipient(ctx context.Context, userID string, limit, offset int) ([]models.NotificationHistory, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error)
	CountExpired(ctx context.Context, now time.Time) (int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	RemoveFCMTokens(ctx context.Context, userID string, tokens ...string) error
}

// Pusher is the push transport capability. SendToTokens attempts delivery
// to every token and returns the tokens the transport reported as no longer
// registered so the caller can prune them. Transport failure is never fatal.
type Pusher interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (invalid []string, err error)
}
