package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bubble/internal/domain"
	"bubble/internal/models"
)

type ingestFixture struct {
	svc       *LocationService
	schedules *fakeScheduleStore
	locations *fakeLocationStore
	history   *fakeHistoryStore
	users     *fakeUserStore
	pusher    *fakePusher
}

func newIngestFixture(users ...*models.User) *ingestFixture {
	f := &ingestFixture{
		schedules: newFakeScheduleStore(),
		locations: &fakeLocationStore{},
		history:   &fakeHistoryStore{},
		users:     newFakeUserStore(users...),
		pusher:    &fakePusher{},
	}
	notifier := NewNotifyService(f.schedules, f.locations, f.history, f.users, f.pusher, NewComposer("https://www.google.com/maps"), 24*time.Hour)
	notifier.now = func() time.Time { return testNow }
	f.svc = NewLocationService(f.locations, f.schedules, NewGeofenceService(0), notifier, 24*time.Hour)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestProcessUpdateValidation(t *testing.T) {
	f := newIngestFixture()
	_, err := f.svc.ProcessUpdate(context.Background(), "alice", LocationUpdate{Coords: Coords{Lat: 91, Lng: 0}})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.ProcessUpdate(context.Background(), "alice", LocationUpdate{Coords: Coords{Lat: 0, Lng: 181}})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestProcessUpdateArrival(t *testing.T) {
	ctx := context.Background()

	t.Run("first sample at the destination is an arrival", func(t *testing.T) {
		f := newIngestFixture(sender(), recipient("bob", "tok-b"))
		require.NoError(t, f.schedules.Create(ctx, arrivalSchedule("bob")))

		result, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat, Lng: destLng}})
		require.NoError(t, err)

		require.Len(t, result.Events, 1)
		assert.Equal(t, domain.EventEntry, result.Events[0].EventType)

		stored, _ := f.schedules.GetByID(ctx, "sched-1")
		assert.Equal(t, string(domain.StatusArrived), stored.Status)
		require.NotNil(t, stored.ArrivedAt)
		assert.Equal(t, testNow, *stored.ArrivedAt)

		require.Len(t, result.Notifications, 1)
		assert.Equal(t, domain.NotificationArrival, result.Notifications[0].Type)
		assert.Equal(t, "bob", result.Notifications[0].ToUserID)

		require.Len(t, result.Updates, 1)
		assert.Equal(t, domain.StatusArrived, result.Updates[0].Status)
		assert.Len(t, result.Updates[0].NotificationIDs, 1)
	})

	t.Run("sample is persisted with the retention deadline", func(t *testing.T) {
		f := newIngestFixture()
		result, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat, Lng: destLng}})
		require.NoError(t, err)
		assert.Equal(t, testNow, result.Sample.RecordedAt)
		assert.Equal(t, testNow.Add(24*time.Hour), result.Sample.AutoDeleteAt)
		assert.Len(t, f.locations.samples, 1)
	})

	t.Run("staying inside does not re-arrive", func(t *testing.T) {
		f := newIngestFixture(sender(), recipient("bob", "tok-b"))
		require.NoError(t, f.schedules.Create(ctx, arrivalSchedule("bob")))

		earlier := testNow.Add(-5 * time.Minute)
		first, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat, Lng: destLng}, RecordedAt: &earlier})
		require.NoError(t, err)
		require.Len(t, first.Events, 1)

		second, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat + 0.0001, Lng: destLng}})
		require.NoError(t, err)
		assert.Empty(t, second.Events)
		assert.Len(t, f.history.entries, 1)
	})

	t.Run("schedule outside its window is skipped", func(t *testing.T) {
		f := newIngestFixture(sender(), recipient("bob", "tok-b"))
		sched := arrivalSchedule("bob")
		sched.StartTime = testNow.Add(-26 * time.Hour)
		sched.EndTime = testNow.Add(-25 * time.Hour)
		require.NoError(t, f.schedules.Create(ctx, sched))

		result, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat, Lng: destLng}})
		require.NoError(t, err)
		assert.Empty(t, result.Events)

		stored, _ := f.schedules.GetByID(ctx, "sched-1")
		assert.Equal(t, string(domain.StatusActive), stored.Status)
	})

	t.Run("terminal schedules are ignored", func(t *testing.T) {
		f := newIngestFixture(sender(), recipient("bob", "tok-b"))
		sched := arrivalSchedule("bob")
		sched.Status = string(domain.StatusExpired)
		require.NoError(t, f.schedules.Create(ctx, sched))

		result, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat, Lng: destLng}})
		require.NoError(t, err)
		assert.Empty(t, result.Events)
	})
}

func TestProcessUpdateDeparture(t *testing.T) {
	ctx := context.Background()

	t.Run("leaving the geofence completes the schedule", func(t *testing.T) {
		f := newIngestFixture(sender(), recipient("bob", "tok-b"))
		require.NoError(t, f.schedules.Create(ctx, arrivalSchedule("bob")))

		// arrive first
		earlier := testNow.Add(-5 * time.Minute)
		_, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat, Lng: destLng}, RecordedAt: &earlier})
		require.NoError(t, err)

		// then move ~800 m away
		result, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat + 0.0072, Lng: destLng}})
		require.NoError(t, err)

		require.Len(t, result.Events, 1)
		assert.Equal(t, domain.EventExit, result.Events[0].EventType)

		stored, _ := f.schedules.GetByID(ctx, "sched-1")
		assert.Equal(t, string(domain.StatusCompleted), stored.Status)
		require.NotNil(t, stored.DepartedAt)

		require.Len(t, result.Notifications, 1)
		assert.Equal(t, domain.NotificationDeparture, result.Notifications[0].Type)
	})

	t.Run("a far sample with no in-range history is not a departure", func(t *testing.T) {
		f := newIngestFixture(sender(), recipient("bob", "tok-b"))
		arrivedAt := testNow.Add(-time.Hour)
		sched := arrivalSchedule("bob")
		sched.Status = string(domain.StatusArrived)
		sched.ArrivedAt = &arrivedAt
		require.NoError(t, f.schedules.Create(ctx, sched))

		result, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat + 0.0072, Lng: destLng}})
		require.NoError(t, err)
		assert.Empty(t, result.Events)

		stored, _ := f.schedules.GetByID(ctx, "sched-1")
		assert.Equal(t, string(domain.StatusArrived), stored.Status)
	})
}

func TestActiveScheduleStatus(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(sender(), recipient("bob", "tok-b"))
	require.NoError(t, f.schedules.Create(ctx, arrivalSchedule("bob")))

	t.Run("no samples yet leaves distance unset", func(t *testing.T) {
		infos, err := f.svc.ActiveScheduleStatus(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Nil(t, infos[0].DistanceM)
	})

	t.Run("distance from the latest sample", func(t *testing.T) {
		_, err := f.svc.ProcessUpdate(ctx, "alice", LocationUpdate{Coords: Coords{Lat: destLat + 0.0072, Lng: destLng}})
		require.NoError(t, err)

		infos, err := f.svc.ActiveScheduleStatus(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, infos, 1)
		require.NotNil(t, infos[0].DistanceM)
		assert.InDelta(t, 800, *infos[0].DistanceM, 20)
	})
}
