package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bubble/internal/domain"
	"bubble/internal/models"
)

// ScheduleInput is a create request. Defaults are applied for zero radius
// and zero stay threshold.
type ScheduleInput struct {
	DestinationName    string
	DestinationAddress string
	DestinationCoords  Coords
	GeofenceRadiusM    int
	NotifyToUserIDs    []string
	StartTime          time.Time
	EndTime            time.Time
	Recurrence         *string
	NotifyOnArrival    bool
	NotifyAfterMinutes int
	NotifyOnDeparture  bool
	Favorite           bool
}

// SchedulePatch is a partial update: nil fields stay untouched. Applied
// field-by-field against the loaded schedule, never as an untyped map.
type SchedulePatch struct {
	DestinationName    *string
	DestinationAddress *string
	DestinationCoords  *Coords
	GeofenceRadiusM    *int
	NotifyToUserIDs    []string
	StartTime          *time.Time
	EndTime            *time.Time
	Recurrence         *string
	NotifyOnArrival    *bool
	NotifyAfterMinutes *int
	NotifyOnDeparture  *bool
	Favorite           *bool
}

// ScheduleService owns schedule CRUD and validation. Lifecycle transitions
// themselves go through the conditional-update path on the store.
type ScheduleService struct {
	schedules      ScheduleStore
	defaultRadiusM int
	now            func() time.Time
}

func NewScheduleService(schedules ScheduleStore, defaultRadiusM int) *ScheduleService {
	if defaultRadiusM <= 0 {
		defaultRadiusM = domain.DefaultGeofenceRadiusM
	}
	return &ScheduleService{
		schedules:      schedules,
		defaultRadiusM: defaultRadiusM,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *ScheduleService) Create(ctx context.Context, userID string, in ScheduleInput) (*models.Schedule, error) {
	if in.GeofenceRadiusM == 0 {
		in.GeofenceRadiusM = s.defaultRadiusM
	}
	if in.NotifyAfterMinutes == 0 {
		in.NotifyAfterMinutes = domain.DefaultNotifyAfterMinutes
	}
	if err := validateScheduleInput(&in); err != nil {
		return nil, err
	}

	now := s.now()
	sched := &models.Schedule{
		ID:                 uuid.NewString(),
		UserID:             userID,
		DestinationName:    in.DestinationName,
		DestinationAddress: in.DestinationAddress,
		DestinationLat:     in.DestinationCoords.Lat,
		DestinationLng:     in.DestinationCoords.Lng,
		GeofenceRadiusM:    in.GeofenceRadiusM,
		NotifyToUserIDs:    in.NotifyToUserIDs,
		StartTime:          in.StartTime.UTC(),
		EndTime:            in.EndTime.UTC(),
		Recurrence:         in.Recurrence,
		NotifyOnArrival:    in.NotifyOnArrival,
		NotifyAfterMinutes: in.NotifyAfterMinutes,
		NotifyOnDeparture:  in.NotifyOnDeparture,
		Status:             string(domain.StatusActive),
		Favorite:           in.Favorite,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.schedules.Create(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// Get loads a schedule; only the owner may read it.
func (s *ScheduleService) Get(ctx context.Context, scheduleID, userID string) (*models.Schedule, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrNotFound
	}
	if sched.UserID != userID {
		return nil, ErrForbidden
	}
	return sched, nil
}

func (s *ScheduleService) List(ctx context.Context, userID string, status *domain.ScheduleStatus) ([]models.Schedule, error) {
	return s.schedules.ListByUser(ctx, userID, status)
}

// Update applies a typed patch and re-validates the merged schedule.
func (s *ScheduleService) Update(ctx context.Context, scheduleID, userID string, patch SchedulePatch) (*models.Schedule, error) {
	sched, err := s.Get(ctx, scheduleID, userID)
	if err != nil {
		return nil, err
	}

	if patch.DestinationName != nil {
		sched.DestinationName = *patch.DestinationName
	}
	if patch.DestinationAddress != nil {
		sched.DestinationAddress = *patch.DestinationAddress
	}
	if patch.DestinationCoords != nil {
		sched.DestinationLat = patch.DestinationCoords.Lat
		sched.DestinationLng = patch.DestinationCoords.Lng
	}
	if patch.GeofenceRadiusM != nil {
		sched.GeofenceRadiusM = *patch.GeofenceRadiusM
	}
	if patch.NotifyToUserIDs != nil {
		sched.NotifyToUserIDs = patch.NotifyToUserIDs
	}
	if patch.StartTime != nil {
		sched.StartTime = patch.StartTime.UTC()
	}
	if patch.EndTime != nil {
		sched.EndTime = patch.EndTime.UTC()
	}
	if patch.Recurrence != nil {
		sched.Recurrence = patch.Recurrence
	}
	if patch.NotifyOnArrival != nil {
		sched.NotifyOnArrival = *patch.NotifyOnArrival
	}
	if patch.NotifyAfterMinutes != nil {
		sched.NotifyAfterMinutes = *patch.NotifyAfterMinutes
	}
	if patch.NotifyOnDeparture != nil {
		sched.NotifyOnDeparture = *patch.NotifyOnDeparture
	}
	if patch.Favorite != nil {
		sched.Favorite = *patch.Favorite
	}

	if err := validateSchedule(sched); err != nil {
		return nil, err
	}
	sched.UpdatedAt = s.now()
	if err := s.schedules.Save(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *ScheduleService) Delete(ctx context.Context, scheduleID, userID string) error {
	if _, err := s.Get(ctx, scheduleID, userID); err != nil {
		return err
	}
	return s.schedules.Delete(ctx, scheduleID)
}

func validateScheduleInput(in *ScheduleInput) error {
	sched := &models.Schedule{
		DestinationName:    in.DestinationName,
		DestinationLat:     in.DestinationCoords.Lat,
		DestinationLng:     in.DestinationCoords.Lng,
		GeofenceRadiusM:    in.GeofenceRadiusM,
		NotifyToUserIDs:    in.NotifyToUserIDs,
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		Recurrence:         in.Recurrence,
		NotifyAfterMinutes: in.NotifyAfterMinutes,
	}
	return validateSchedule(sched)
}

func validateSchedule(sched *models.Schedule) error {
	if sched.DestinationName == "" {
		return fmt.Errorf("%w: destination name is required", ErrInvalid)
	}
	if err := validCoords(Coords{Lat: sched.DestinationLat, Lng: sched.DestinationLng}); err != nil {
		return err
	}
	if sched.GeofenceRadiusM < domain.MinGeofenceRadiusM || sched.GeofenceRadiusM > domain.MaxGeofenceRadiusM {
		return fmt.Errorf("%w: geofence radius %d outside [%d,%d]", ErrInvalid, sched.GeofenceRadiusM, domain.MinGeofenceRadiusM, domain.MaxGeofenceRadiusM)
	}
	if len(sched.NotifyToUserIDs) == 0 {
		return fmt.Errorf("%w: at least one notify recipient is required", ErrInvalid)
	}
	if !sched.StartTime.Before(sched.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalid)
	}
	if sched.NotifyAfterMinutes < domain.MinNotifyAfterMinutes || sched.NotifyAfterMinutes > domain.MaxNotifyAfterMinutes {
		return fmt.Errorf("%w: notify_after_minutes %d outside [%d,%d]", ErrInvalid, sched.NotifyAfterMinutes, domain.MinNotifyAfterMinutes, domain.MaxNotifyAfterMinutes)
	}
	if sched.Recurrence != nil {
		if _, err := domain.ParseRecurrenceType(*sched.Recurrence); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}
