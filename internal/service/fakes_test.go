package service

import (
	"context"
	"sort"
	"time"

	"bubble/internal/domain"
	"bubble/internal/models"
)

// In-memory store fakes. Single-goroutine tests, no locking.

type fakeScheduleStore struct {
	byID map[string]*models.Schedule
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{byID: map[string]*models.Schedule{}}
}

func (f *fakeScheduleStore) Create(_ context.Context, s *models.Schedule) error {
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeScheduleStore) GetByID(_ context.Context, id string) (*models.Schedule, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeScheduleStore) ListByUser(_ context.Context, userID string, status *domain.ScheduleStatus) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, s := range f.byID {
		if s.UserID != userID {
			continue
		}
		if status != nil && s.Status != string(*status) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeScheduleStore) ListByStatus(_ context.Context, status domain.ScheduleStatus) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, s := range f.byID {
		if s.Status == string(status) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeScheduleStore) ListOverdue(_ context.Context, statuses []domain.ScheduleStatus, cutoff time.Time) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, s := range f.byID {
		if !s.EndTime.Before(cutoff) {
			continue
		}
		for _, st := range statuses {
			if s.Status == string(st) {
				out = append(out, *s)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeScheduleStore) ListEndedBefore(_ context.Context, cutoff time.Time) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, s := range f.byID {
		if s.EndTime.Before(cutoff) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeScheduleStore) Transition(_ context.Context, id string, from, to domain.ScheduleStatus, arrivedAt, departedAt *time.Time) (bool, error) {
	s, ok := f.byID[id]
	if !ok || s.Status != string(from) {
		return false, nil
	}
	s.Status = string(to)
	if arrivedAt != nil {
		s.ArrivedAt = arrivedAt
	}
	if departedAt != nil {
		s.DepartedAt = departedAt
	}
	return true, nil
}

func (f *fakeScheduleStore) Save(_ context.Context, s *models.Schedule) error {
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeScheduleStore) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeLocationStore struct {
	samples []models.LocationSample
}

func (f *fakeLocationStore) Create(_ context.Context, sample *models.LocationSample) error {
	f.samples = append(f.samples, *sample)
	return nil
}

// newest first; equal timestamps keep last-inserted first
func (f *fakeLocationStore) sortedByUser(userID string) []models.LocationSample {
	var out []models.LocationSample
	for i := len(f.samples) - 1; i >= 0; i-- {
		if f.samples[i].UserID == userID {
			out = append(out, f.samples[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out
}

func (f *fakeLocationStore) ListByUser(_ context.Context, userID string, limit int) ([]models.LocationSample, error) {
	out := f.sortedByUser(userID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLocationStore) LatestByUser(_ context.Context, userID string) (*models.LocationSample, error) {
	out := f.sortedByUser(userID)
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (f *fakeLocationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var kept []models.LocationSample
	var n int64
	for _, s := range f.samples {
		if !s.AutoDeleteAt.After(now) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	f.samples = kept
	return n, nil
}

func (f *fakeLocationStore) DeleteBySchedule(_ context.Context, scheduleID string) (int64, error) {
	var kept []models.LocationSample
	var n int64
	for _, s := range f.samples {
		if s.ScheduleID != nil && *s.ScheduleID == scheduleID {
			n++
			continue
		}
		kept = append(kept, s)
	}
	f.samples = kept
	return n, nil
}

func (f *fakeLocationStore) CountExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range f.samples {
		if !s.AutoDeleteAt.After(now) {
			n++
		}
	}
	return n, nil
}

type fakeHistoryStore struct {
	entries []models.NotificationHistory
}

func (f *fakeHistoryStore) Create(_ context.Context, h *models.NotificationHistory) error {
	f.entries = append(f.entries, *h)
	return nil
}

func (f *fakeHistoryStore) ExistsForSchedule(_ context.Context, scheduleID string, typ domain.NotificationType) (bool, error) {
	for _, e := range f.entries {
		if e.ScheduleID == scheduleID && e.Type == string(typ) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHistoryStore) ListByRecipient(_ context.Context, userID string, limit, offset int) ([]models.NotificationHistory, error) {
	var out []models.NotificationHistory
	for _, e := range f.entries {
		if e.ToUserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeHistoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var kept []models.NotificationHistory
	var n int64
	for _, e := range f.entries {
		if !e.AutoDeleteAt.After(now) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return n, nil
}

func (f *fakeHistoryStore) DeleteBySchedule(_ context.Context, scheduleID string) (int64, error) {
	var kept []models.NotificationHistory
	var n int64
	for _, e := range f.entries {
		if e.ScheduleID == scheduleID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return n, nil
}

func (f *fakeHistoryStore) CountExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, e := range f.entries {
		if !e.AutoDeleteAt.After(now) {
			n++
		}
	}
	return n, nil
}

type fakeUserStore struct {
	byID map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{byID: map[string]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (f *fakeUserStore) RemoveFCMTokens(_ context.Context, userID string, tokens ...string) error {
	u, ok := f.byID[userID]
	if !ok {
		return nil
	}
	for _, t := range tokens {
		u.FCMTokens = u.FCMTokens.Remove(t)
	}
	return nil
}

type pushCall struct {
	tokens []string
	title  string
	body   string
	data   map[string]string
}

type fakePusher struct {
	calls   []pushCall
	invalid []string
	err     error
}

func (f *fakePusher) SendToTokens(_ context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	f.calls = append(f.calls, pushCall{tokens: tokens, title: title, body: body, data: data})
	return f.invalid, f.err
}
