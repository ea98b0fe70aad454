package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"bubble/internal/domain"
	"bubble/internal/models"
)

// DeliveryResult records one recipient's dispatch outcome. A failed push is
// not a failed dispatch: the history row is the source of truth for "did we
// try", independent of transport success.
type DeliveryResult struct {
	ToUserID  string
	HistoryID string
	Delivered bool
	Err       error
}

// NotifyService turns geofence events into push notifications and durable
// history rows, and runs the stay-notification sweep.
type NotifyService struct {
	schedules ScheduleStore
	locations LocationStore
	history   HistoryStore
	users     UserStore
	pusher    Pusher
	composer  *Composer
	ttl       time.Duration
	now       func() time.Time
}

func NewNotifyService(schedules ScheduleStore, locations LocationStore, history HistoryStore, users UserStore, pusher Pusher, composer *Composer, ttl time.Duration) *NotifyService {
	return &NotifyService{
		schedules: schedules,
		locations: locations,
		history:   history,
		users:     users,
		pusher:    pusher,
		composer:  composer,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch sends one notification of the given type for a schedule to every
// recipient that passes preference screening. Guard failures return an empty
// result; per-recipient failures are recorded and the loop continues.
func (s *NotifyService) Dispatch(ctx context.Context, sched *models.Schedule, typ domain.NotificationType, coords Coords) []DeliveryResult {
	switch typ {
	case domain.NotificationArrival:
		if !sched.NotifyOnArrival {
			return nil
		}
	case domain.NotificationDeparture:
		if !sched.NotifyOnDeparture {
			return nil
		}
	}
	if len(sched.NotifyToUserIDs) == 0 {
		return nil
	}

	now := s.now()

	if typ == domain.NotificationStay {
		if sched.ArrivedAt == nil {
			log.Printf("[notify] schedule %s: stay requested but arrived_at not set", sched.ID)
			return nil
		}
		elapsed := int(now.Sub(*sched.ArrivedAt).Minutes())
		if elapsed < sched.NotifyAfterMinutes {
			return nil
		}
		exists, err := s.history.ExistsForSchedule(ctx, sched.ID, domain.NotificationStay)
		if err != nil {
			log.Printf("[notify] schedule %s: stay dedup check failed: %v", sched.ID, err)
			return nil
		}
		if exists {
			// at most one stay notification per schedule, ever
			return nil
		}
	}

	sender, err := s.users.GetByID(ctx, sched.UserID)
	if err != nil || sender == nil {
		log.Printf("[notify] schedule %s: sender %s not found: %v", sched.ID, sched.UserID, err)
		return nil
	}

	var message, mapLink string
	switch typ {
	case domain.NotificationArrival:
		message = s.composer.ArrivalMessage(sender.Name(), sched.DestinationName, now)
		mapLink = s.composer.MapLink(coords.Lat, coords.Lng)
	case domain.NotificationStay:
		elapsed := int(now.Sub(*sched.ArrivedAt).Minutes())
		message = s.composer.StayMessage(sender.Name(), sched.DestinationName, elapsed)
		mapLink = s.composer.MapLink(coords.Lat, coords.Lng)
	case domain.NotificationDeparture:
		message = s.composer.DepartureMessage(sender.Name(), sched.DestinationName, now)
		mapLink = s.composer.MapLink(sched.DestinationLat, sched.DestinationLng)
	}

	title := s.composer.Title(typ, sender.Name())
	body := message
	if typ != domain.NotificationDeparture {
		body = message + "\nHere now → " + mapLink
	}
	data := map[string]string{
		"type":             string(typ),
		"schedule_id":      sched.ID,
		"from_user_id":     sched.UserID,
		"destination_name": sched.DestinationName,
		"map_link":         mapLink,
	}

	var results []DeliveryResult
	for _, toUserID := range sched.NotifyToUserIDs {
		recipient, err := s.users.GetByID(ctx, toUserID)
		if err != nil || recipient == nil {
			log.Printf("[notify] schedule %s: recipient %s not found: %v", sched.ID, toUserID, err)
			results = append(results, DeliveryResult{ToUserID: toUserID, Err: err})
			continue
		}
		if !recipient.AllowsNotification(typ) {
			// recipient opted out of this type; skip them, not the dispatch
			continue
		}

		delivered := true
		invalid, err := s.pusher.SendToTokens(ctx, recipient.FCMTokens, title, body, data)
		if err != nil {
			log.Printf("[notify] schedule %s: push to %s failed: %v", sched.ID, toUserID, err)
			delivered = false
		}
		if len(invalid) > 0 {
			if err := s.users.RemoveFCMTokens(ctx, toUserID, invalid...); err != nil {
				log.Printf("[notify] failed to prune %d tokens for %s: %v", len(invalid), toUserID, err)
			}
		}

		entry := &models.NotificationHistory{
			ID:           uuid.NewString(),
			FromUserID:   sched.UserID,
			ToUserID:     toUserID,
			ScheduleID:   sched.ID,
			Type:         string(typ),
			Message:      message,
			MapLink:      mapLink,
			SentAt:       now,
			AutoDeleteAt: now.Add(s.ttl),
		}
		if err := s.history.Create(ctx, entry); err != nil {
			log.Printf("[notify] schedule %s: history write for %s failed: %v", sched.ID, toUserID, err)
			results = append(results, DeliveryResult{ToUserID: toUserID, Delivered: delivered, Err: err})
			continue
		}
		results = append(results, DeliveryResult{ToUserID: toUserID, HistoryID: entry.ID, Delivered: delivered})
	}
	return results
}

// HistoryIDs extracts the ids of the history rows a dispatch persisted.
func HistoryIDs(results []DeliveryResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.HistoryID != "" {
			ids = append(ids, r.HistoryID)
		}
	}
	return ids
}

// SweepStayNotifications scans every ARRIVED schedule and dispatches the
// one-time stay notification once the dwell threshold is exceeded. The
// schedule window is advisory here: a visit that outlasts end_time still
// gets its stay notification. Safe to re-run at any cadence; dedup rides on
// the history-existence check in Dispatch.
func (s *NotifyService) SweepStayNotifications(ctx context.Context) (int, error) {
	arrived, err := s.schedules.ListByStatus(ctx, domain.StatusArrived)
	if err != nil {
		return 0, err
	}

	now := s.now()
	total := 0
	for i := range arrived {
		sched := &arrived[i]
		if sched.ArrivedAt == nil {
			continue
		}
		if int(now.Sub(*sched.ArrivedAt).Minutes()) < sched.NotifyAfterMinutes {
			continue
		}
		exists, err := s.history.ExistsForSchedule(ctx, sched.ID, domain.NotificationStay)
		if err != nil {
			log.Printf("[sweep] schedule %s: dedup check failed: %v", sched.ID, err)
			continue
		}
		if exists {
			continue
		}
		latest, err := s.locations.LatestByUser(ctx, sched.UserID)
		if err != nil {
			log.Printf("[sweep] schedule %s: latest location lookup failed: %v", sched.ID, err)
			continue
		}
		if latest == nil {
			log.Printf("[sweep] schedule %s: no location sample, skipping", sched.ID)
			continue
		}
		results := s.Dispatch(ctx, sched, domain.NotificationStay, Coords{Lat: latest.Latitude, Lng: latest.Longitude})
		sent := len(HistoryIDs(results))
		if sent > 0 {
			log.Printf("[sweep] schedule %s: stay notification sent to %d recipients", sched.ID, sent)
		}
		total += sent
	}
	return total, nil
}
