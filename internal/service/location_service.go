package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"bubble/internal/domain"
	"bubble/internal/models"
	"bubble/pkg/location"
)

// LocationUpdate is one incoming sample from the mobile client.
type LocationUpdate struct {
	Coords     Coords
	AccuracyM  *float64
	RecordedAt *time.Time
	ScheduleID *string
}

// NotificationSummary reports one dispatched notification back to the caller.
type NotificationSummary struct {
	Type       domain.NotificationType `json:"type"`
	ScheduleID string                  `json:"schedule_id"`
	ToUserID   string                  `json:"to_user_id"`
}

// ScheduleUpdate reports one schedule transition triggered by an ingest cycle.
type ScheduleUpdate struct {
	ScheduleID      string                   `json:"schedule_id"`
	DestinationName string                   `json:"destination_name"`
	EventType       domain.GeofenceEventType `json:"event_type"`
	Status          domain.ScheduleStatus    `json:"status"`
	DistanceM       float64                  `json:"distance_m"`
	NotificationIDs []string                 `json:"notification_ids"`
}

// IngestResult is the full outcome of one location push.
type IngestResult struct {
	Sample        *models.LocationSample
	Events        []GeofenceEvent
	Notifications []NotificationSummary
	Updates       []ScheduleUpdate
}

// ScheduleStatusInfo is one row of the status endpoint: a live schedule and
// the distance from the latest known position.
type ScheduleStatusInfo struct {
	ScheduleID      string                `json:"schedule_id"`
	DestinationName string                `json:"destination_name"`
	DestinationLat  float64               `json:"destination_lat"`
	DestinationLng  float64               `json:"destination_lng"`
	Status          domain.ScheduleStatus `json:"status"`
	ArrivedAt       *time.Time            `json:"arrived_at,omitempty"`
	DepartedAt      *time.Time            `json:"departed_at,omitempty"`
	DistanceM       *float64              `json:"distance_m,omitempty"`
}

// LocationService owns the ingest pipeline: persist the sample, evaluate
// geofences for the user's live schedules, apply lifecycle transitions and
// hand events to the dispatcher.
type LocationService struct {
	locations LocationStore
	schedules ScheduleStore
	geofence  *GeofenceService
	notifier  *NotifyService
	ttl       time.Duration
	now       func() time.Time
}

func NewLocationService(locations LocationStore, schedules ScheduleStore, geofence *GeofenceService, notifier *NotifyService, ttl time.Duration) *LocationService {
	return &LocationService{
		locations: locations,
		schedules: schedules,
		geofence:  geofence,
		notifier:  notifier,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validCoords(c Coords) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalid, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalid, c.Lng)
	}
	return nil
}

// ProcessUpdate runs one ingest cycle. Two cycles for the same user may
// race; the conditional transitions make the loser a no-op, so no event is
// emitted twice.
func (s *LocationService) ProcessUpdate(ctx context.Context, userID string, upd LocationUpdate) (*IngestResult, error) {
	if err := validCoords(upd.Coords); err != nil {
		return nil, err
	}

	now := s.now()
	recordedAt := now
	if upd.RecordedAt != nil {
		recordedAt = upd.RecordedAt.UTC()
	}

	sample := &models.LocationSample{
		ID:           uuid.NewString(),
		UserID:       userID,
		ScheduleID:   upd.ScheduleID,
		Latitude:     upd.Coords.Lat,
		Longitude:    upd.Coords.Lng,
		AccuracyM:    upd.AccuracyM,
		RecordedAt:   recordedAt,
		AutoDeleteAt: recordedAt.Add(s.ttl),
	}
	if err := s.locations.Create(ctx, sample); err != nil {
		return nil, err
	}

	// The immediately preceding sample. A missing one (first push, or the
	// history already reaped) degrades to nil rather than failing the cycle.
	var prev *Coords
	if recent, err := s.locations.ListByUser(ctx, userID, 2); err != nil {
		log.Printf("[ingest] user %s: previous sample lookup failed: %v", userID, err)
	} else if len(recent) >= 2 {
		prev = &Coords{Lat: recent[1].Latitude, Lng: recent[1].Longitude}
	}

	result := &IngestResult{Sample: sample}

	live, err := s.liveSchedules(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range live {
		sched := &live[i]
		// Schedules outside their window are skipped this cycle, not mutated.
		if !sched.InWindow(now) {
			continue
		}

		if entered, dist := s.geofence.CheckEntry(sched, upd.Coords, prev); entered {
			ok, err := s.schedules.Transition(ctx, sched.ID, domain.StatusActive, domain.StatusArrived, &now, nil)
			if err != nil {
				log.Printf("[ingest] schedule %s: arrival transition failed: %v", sched.ID, err)
				continue
			}
			if !ok {
				// lost the race to a concurrent cycle; not a fault
				continue
			}
			sched.Status = string(domain.StatusArrived)
			sched.ArrivedAt = &now
			s.emit(ctx, result, sched, domain.EventEntry, domain.NotificationArrival, upd.Coords, dist)
			continue
		}

		if exited, dist := s.geofence.CheckExit(sched, upd.Coords, prev); exited {
			ok, err := s.schedules.Transition(ctx, sched.ID, domain.StatusArrived, domain.StatusCompleted, nil, &now)
			if err != nil {
				log.Printf("[ingest] schedule %s: departure transition failed: %v", sched.ID, err)
				continue
			}
			if !ok {
				continue
			}
			sched.Status = string(domain.StatusCompleted)
			sched.DepartedAt = &now
			s.emit(ctx, result, sched, domain.EventExit, domain.NotificationDeparture, upd.Coords, dist)
		}
	}

	return result, nil
}

func (s *LocationService) emit(ctx context.Context, result *IngestResult, sched *models.Schedule, event domain.GeofenceEventType, typ domain.NotificationType, coords Coords, dist float64) {
	result.Events = append(result.Events, GeofenceEvent{
		Schedule:  sched,
		EventType: event,
		Coords:    coords,
		DistanceM: dist,
	})

	deliveries := s.notifier.Dispatch(ctx, sched, typ, coords)
	ids := HistoryIDs(deliveries)
	for _, d := range deliveries {
		if d.HistoryID == "" {
			continue
		}
		result.Notifications = append(result.Notifications, NotificationSummary{
			Type:       typ,
			ScheduleID: sched.ID,
			ToUserID:   d.ToUserID,
		})
	}
	result.Updates = append(result.Updates, ScheduleUpdate{
		ScheduleID:      sched.ID,
		DestinationName: sched.DestinationName,
		EventType:       event,
		Status:          sched.LifecycleStatus(),
		DistanceM:       dist,
		NotificationIDs: ids,
	})
}

// liveSchedules returns the user's ACTIVE and ARRIVED schedules.
func (s *LocationService) liveSchedules(ctx context.Context, userID string) ([]models.Schedule, error) {
	active := domain.StatusActive
	arrived := domain.StatusArrived
	a, err := s.schedules.ListByUser(ctx, userID, &active)
	if err != nil {
		return nil, err
	}
	b, err := s.schedules.ListByUser(ctx, userID, &arrived)
	if err != nil {
		return nil, err
	}
	return append(a, b...), nil
}

// LatestLocation returns the user's most recent sample, or nil.
func (s *LocationService) LatestLocation(ctx context.Context, userID string) (*models.LocationSample, error) {
	return s.locations.LatestByUser(ctx, userID)
}

// ActiveScheduleStatus returns the user's live schedules with the distance
// from the latest known position, for the status endpoint.
func (s *LocationService) ActiveScheduleStatus(ctx context.Context, userID string) ([]ScheduleStatusInfo, error) {
	live, err := s.liveSchedules(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest, err := s.locations.LatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]ScheduleStatusInfo, 0, len(live))
	for i := range live {
		sched := &live[i]
		info := ScheduleStatusInfo{
			ScheduleID:      sched.ID,
			DestinationName: sched.DestinationName,
			DestinationLat:  sched.DestinationLat,
			DestinationLng:  sched.DestinationLng,
			Status:          sched.LifecycleStatus(),
			ArrivedAt:       sched.ArrivedAt,
			DepartedAt:      sched.DepartedAt,
		}
		if latest != nil {
			d := location.HaversineM(latest.Latitude, latest.Longitude, sched.DestinationLat, sched.DestinationLng)
			info.DistanceM = &d
		}
		infos = append(infos, info)
	}
	return infos, nil
}
