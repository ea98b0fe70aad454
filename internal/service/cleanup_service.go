package service

import (
	"context"
	"log"
	"time"

	"bubble/internal/domain"
)

// CleanupResult reports what one purge pass deleted.
type CleanupResult struct {
	LocationHistory     int64 `json:"location_history"`
	NotificationHistory int64 `json:"notification_history"`
	ExpiredSchedules    int64 `json:"expired_schedules"`
}

func (r CleanupResult) Total() int64 {
	return r.LocationHistory + r.NotificationHistory + r.ExpiredSchedules
}

// CleanupStats is the dry-run view of what a purge would remove.
type CleanupStats struct {
	LocationHistoryCount     int64 `json:"location_history_count"`
	NotificationHistoryCount int64 `json:"notification_history_count"`
	ExpiredSchedulesCount    int64 `json:"expired_schedules_count"`
	TotalCleanupItems        int64 `json:"total_cleanup_items"`
}

// CleanupService is the retention reaper: it force-expires schedules that
// never saw a natural exit, and hard-deletes TTL-expired rows. Both sweeps
// are idempotent and order-insensitive.
type CleanupService struct {
	schedules ScheduleStore
	locations LocationStore
	history   HistoryStore
	ttl       time.Duration
	now       func() time.Time
}

func NewCleanupService(schedules ScheduleStore, locations LocationStore, history HistoryStore, ttl time.Duration) *CleanupService {
	return &CleanupService{
		schedules: schedules,
		locations: locations,
		history:   history,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ExpireOverdueSchedules transitions ACTIVE and ARRIVED schedules to EXPIRED
// once end_time + TTL has elapsed without a natural exit. This is a forced,
// time-based transition that bypasses the geofence path. Row failures are
// logged and skipped.
func (c *CleanupService) ExpireOverdueSchedules(ctx context.Context) (int, error) {
	cutoff := c.now().Add(-c.ttl)
	overdue, err := c.schedules.ListOverdue(ctx, []domain.ScheduleStatus{domain.StatusActive, domain.StatusArrived}, cutoff)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range overdue {
		sched := &overdue[i]
		ok, err := c.schedules.Transition(ctx, sched.ID, sched.LifecycleStatus(), domain.StatusExpired, nil, nil)
		if err != nil {
			log.Printf("[cleanup] schedule %s: expire failed: %v", sched.ID, err)
			continue
		}
		if !ok {
			// moved on concurrently; already handled
			continue
		}
		updated++
		log.Printf("[cleanup] schedule %s expired (end_time %s)", sched.ID, sched.EndTime.Format(time.RFC3339))
	}
	return updated, nil
}

// PurgeExpiredData deletes TTL-expired location samples and notification
// history, then deletes schedules past end_time + TTL together with their
// dependent rows so no orphans outlive the parent.
func (c *CleanupService) PurgeExpiredData(ctx context.Context) (CleanupResult, error) {
	now := c.now()
	var result CleanupResult

	n, err := c.locations.DeleteExpired(ctx, now)
	if err != nil {
		log.Printf("[cleanup] location purge failed: %v", err)
	}
	result.LocationHistory += n

	n, err = c.history.DeleteExpired(ctx, now)
	if err != nil {
		log.Printf("[cleanup] notification purge failed: %v", err)
	}
	result.NotificationHistory += n

	cutoff := now.Add(-c.ttl)
	ended, err := c.schedules.ListEndedBefore(ctx, cutoff)
	if err != nil {
		return result, err
	}
	for i := range ended {
		sched := &ended[i]
		if n, err := c.locations.DeleteBySchedule(ctx, sched.ID); err != nil {
			log.Printf("[cleanup] schedule %s: dependent location delete failed: %v", sched.ID, err)
		} else {
			result.LocationHistory += n
		}
		if n, err := c.history.DeleteBySchedule(ctx, sched.ID); err != nil {
			log.Printf("[cleanup] schedule %s: dependent history delete failed: %v", sched.ID, err)
		} else {
			result.NotificationHistory += n
		}
		if err := c.schedules.Delete(ctx, sched.ID); err != nil {
			log.Printf("[cleanup] schedule %s: delete failed: %v", sched.ID, err)
			continue
		}
		result.ExpiredSchedules++
	}

	if result.Total() > 0 {
		log.Printf("[cleanup] purged %d rows (%d locations, %d notifications, %d schedules)",
			result.Total(), result.LocationHistory, result.NotificationHistory, result.ExpiredSchedules)
	}
	return result, nil
}

// Stats counts purge-eligible rows without deleting anything.
func (c *CleanupService) Stats(ctx context.Context) (CleanupStats, error) {
	now := c.now()
	var stats CleanupStats

	n, err := c.locations.CountExpired(ctx, now)
	if err != nil {
		return stats, err
	}
	stats.LocationHistoryCount = n

	n, err = c.history.CountExpired(ctx, now)
	if err != nil {
		return stats, err
	}
	stats.NotificationHistoryCount = n

	ended, err := c.schedules.ListEndedBefore(ctx, now.Add(-c.ttl))
	if err != nil {
		return stats, err
	}
	stats.ExpiredSchedulesCount = int64(len(ended))
	stats.TotalCleanupItems = stats.LocationHistoryCount + stats.NotificationHistoryCount + stats.ExpiredSchedulesCount
	return stats, nil
}
