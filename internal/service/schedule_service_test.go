package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bubble/internal/domain"
)

func newScheduleFixture() (*ScheduleService, *fakeScheduleStore) {
	store := newFakeScheduleStore()
	svc := NewScheduleService(store, 0)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func validInput() ScheduleInput {
	return ScheduleInput{
		DestinationName:    "School",
		DestinationCoords:  Coords{Lat: destLat, Lng: destLng},
		GeofenceRadiusM:    100,
		NotifyToUserIDs:    []string{"bob"},
		StartTime:          testNow.Add(time.Hour),
		EndTime:            testNow.Add(3 * time.Hour),
		NotifyOnArrival:    true,
		NotifyAfterMinutes: 30,
		NotifyOnDeparture:  true,
	}
}

func TestScheduleCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active schedule", func(t *testing.T) {
		svc, store := newScheduleFixture()
		sched, err := svc.Create(ctx, "alice", validInput())
		require.NoError(t, err)

		assert.NotEmpty(t, sched.ID)
		assert.Equal(t, "alice", sched.UserID)
		assert.Equal(t, string(domain.StatusActive), sched.Status)
		assert.Nil(t, sched.ArrivedAt)

		stored, _ := store.GetByID(ctx, sched.ID)
		require.NotNil(t, stored)
	})

	t.Run("zero radius and threshold get defaults", func(t *testing.T) {
		svc, _ := newScheduleFixture()
		in := validInput()
		in.GeofenceRadiusM = 0
		in.NotifyAfterMinutes = 0
		sched, err := svc.Create(ctx, "alice", in)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultGeofenceRadiusM, sched.GeofenceRadiusM)
		assert.Equal(t, domain.DefaultNotifyAfterMinutes, sched.NotifyAfterMinutes)
	})

	t.Run("configured default radius wins over the built-in one", func(t *testing.T) {
		svc := NewScheduleService(newFakeScheduleStore(), 120)
		svc.now = func() time.Time { return testNow }
		in := validInput()
		in.GeofenceRadiusM = 0
		sched, err := svc.Create(ctx, "alice", in)
		require.NoError(t, err)
		assert.Equal(t, 120, sched.GeofenceRadiusM)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc, _ := newScheduleFixture()

		in := validInput()
		in.DestinationName = ""
		_, err := svc.Create(ctx, "alice", in)
		assert.ErrorIs(t, err, ErrInvalid)

		in = validInput()
		in.GeofenceRadiusM = 5
		_, err = svc.Create(ctx, "alice", in)
		assert.ErrorIs(t, err, ErrInvalid)

		in = validInput()
		in.GeofenceRadiusM = 501
		_, err = svc.Create(ctx, "alice", in)
		assert.ErrorIs(t, err, ErrInvalid)

		in = validInput()
		in.NotifyToUserIDs = nil
		_, err = svc.Create(ctx, "alice", in)
		assert.ErrorIs(t, err, ErrInvalid)

		in = validInput()
		in.EndTime = in.StartTime
		_, err = svc.Create(ctx, "alice", in)
		assert.ErrorIs(t, err, ErrInvalid)

		in = validInput()
		in.NotifyAfterMinutes = 1441
		_, err = svc.Create(ctx, "alice", in)
		assert.ErrorIs(t, err, ErrInvalid)

		in = validInput()
		bad := "fortnightly"
		in.Recurrence = &bad
		_, err = svc.Create(ctx, "alice", in)
		assert.ErrorIs(t, err, ErrInvalid)

		in = validInput()
		in.DestinationCoords.Lat = 95
		_, err = svc.Create(ctx, "alice", in)
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestScheduleGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newScheduleFixture()
	sched, err := svc.Create(ctx, "alice", validInput())
	require.NoError(t, err)

	t.Run("owner reads it back", func(t *testing.T) {
		got, err := svc.Get(ctx, sched.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, sched.ID, got.ID)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, "nope", "alice")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		_, err := svc.Get(ctx, sched.ID, "mallory")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestScheduleUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only the provided fields", func(t *testing.T) {
		svc, _ := newScheduleFixture()
		sched, err := svc.Create(ctx, "alice", validInput())
		require.NoError(t, err)

		name := "Office"
		radius := 200
		fav := true
		got, err := svc.Update(ctx, sched.ID, "alice", SchedulePatch{
			DestinationName: &name,
			GeofenceRadiusM: &radius,
			Favorite:        &fav,
		})
		require.NoError(t, err)

		assert.Equal(t, "Office", got.DestinationName)
		assert.Equal(t, 200, got.GeofenceRadiusM)
		assert.True(t, got.Favorite)
		// untouched fields survive
		assert.Equal(t, []string{"bob"}, []string(got.NotifyToUserIDs))
		assert.Equal(t, validInput().StartTime, got.StartTime)
	})

	t.Run("re-validates the merged schedule", func(t *testing.T) {
		svc, _ := newScheduleFixture()
		sched, err := svc.Create(ctx, "alice", validInput())
		require.NoError(t, err)

		radius := 9999
		_, err = svc.Update(ctx, sched.ID, "alice", SchedulePatch{GeofenceRadiusM: &radius})
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("non-owner cannot update", func(t *testing.T) {
		svc, _ := newScheduleFixture()
		sched, err := svc.Create(ctx, "alice", validInput())
		require.NoError(t, err)

		name := "Office"
		_, err = svc.Update(ctx, sched.ID, "mallory", SchedulePatch{DestinationName: &name})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestScheduleDelete(t *testing.T) {
	ctx := context.Background()
	svc, store := newScheduleFixture()
	sched, err := svc.Create(ctx, "alice", validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, sched.ID, "mallory"), ErrForbidden)

	require.NoError(t, svc.Delete(ctx, sched.ID, "alice"))
	got, _ := store.GetByID(ctx, sched.ID)
	assert.Nil(t, got)
}
