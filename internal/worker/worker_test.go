package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/guild-birthday/internal/engine"
)

type MockTodayService struct {
	mock.Mock
}

func (m *MockTodayService) Today(ctx context.Context, guildID uint64) ([]engine.BirthdayRecord, error) {
	args := m.Called(ctx, guildID)
	recs, _ := args.Get(0).([]engine.BirthdayRecord)
	return recs, args.Error(1)
}

type MockGuildSource struct {
	mock.Mock
}

func (m *MockGuildSource) ListGuilds(ctx context.Context) ([]uint64, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uint64)
	return ids, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBirthday(ctx context.Context, guildID uint64, rec engine.BirthdayRecord) error {
	args := m.Called(ctx, guildID, rec)
	return args.Error(0)
}

func (m *MockPublisher) Close() error { return nil }

type recordingRefresher struct {
	mu     sync.Mutex
	guilds []uint64
}

func (r *recordingRefresher) Invalidate(guildID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guilds = append(r.guilds, guildID)
}

func TestRunPass_PublishesEachMatchAndRefreshesFeeds(t *testing.T) {
	svc := new(MockTodayService)
	guilds := new(MockGuildSource)
	pub := new(MockPublisher)
	refresher := &recordingRefresher{}

	alice := engine.BirthdayRecord{UserID: 1, Month: 3, Day: 1, DisplayName: "alice"}
	bob := engine.BirthdayRecord{UserID: 2, Month: 3, Day: 1, DisplayName: "bob"}

	guilds.On("ListGuilds", mock.Anything).Return([]uint64{10, 20}, nil)
	svc.On("Today", mock.Anything, uint64(10)).Return([]engine.BirthdayRecord{alice, bob}, nil)
	svc.On("Today", mock.Anything, uint64(20)).Return([]engine.BirthdayRecord(nil), nil)
	pub.On("PublishBirthday", mock.Anything, uint64(10), alice).Return(nil)
	pub.On("PublishBirthday", mock.Anything, uint64(10), bob).Return(nil)

	w := New(svc, guilds, pub, refresher, engine.RealClock{})
	w.RunPass(context.Background())

	pub.AssertExpectations(t)
	assert.Equal(t, []uint64{10, 20}, refresher.guilds,
		"every guild should have its feed cache invalidated, matches or not")
}

func TestRunPass_SkipsBrokenGuildAndContinues(t *testing.T) {
	svc := new(MockTodayService)
	guilds := new(MockGuildSource)
	pub := new(MockPublisher)

	carol := engine.BirthdayRecord{UserID: 3, Month: 12, Day: 31, DisplayName: "carol"}

	guilds.On("ListGuilds", mock.Anything).Return([]uint64{10, 20}, nil)
	svc.On("Today", mock.Anything, uint64(10)).Return([]engine.BirthdayRecord(nil), errors.New("store down"))
	svc.On("Today", mock.Anything, uint64(20)).Return([]engine.BirthdayRecord{carol}, nil)
	pub.On("PublishBirthday", mock.Anything, uint64(20), carol).Return(nil)

	w := New(svc, guilds, pub, nil, engine.RealClock{})
	w.RunPass(context.Background())

	pub.AssertExpectations(t)
	svc.AssertNumberOfCalls(t, "Today", 2)
}

func TestRunPass_PublishFailureDoesNotStopTheBatch(t *testing.T) {
	svc := new(MockTodayService)
	guilds := new(MockGuildSource)
	pub := new(MockPublisher)

	alice := engine.BirthdayRecord{UserID: 1, Month: 3, Day: 1, DisplayName: "alice"}
	bob := engine.BirthdayRecord{UserID: 2, Month: 3, Day: 1, DisplayName: "bob"}

	guilds.On("ListGuilds", mock.Anything).Return([]uint64{10}, nil)
	svc.On("Today", mock.Anything, uint64(10)).Return([]engine.BirthdayRecord{alice, bob}, nil)
	pub.On("PublishBirthday", mock.Anything, uint64(10), alice).Return(errors.New("broker gone"))
	pub.On("PublishBirthday", mock.Anything, uint64(10), bob).Return(nil)

	w := New(svc, guilds, pub, nil, engine.RealClock{})
	w.RunPass(context.Background())

	pub.AssertExpectations(t)
}

func TestRun_StopsOnContextCancellation(t *testing.T) {
	svc := new(MockTodayService)
	guilds := new(MockGuildSource)
	pub := new(MockPublisher)

	w := New(svc, guilds, pub, nil, engine.RealClock{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
	guilds.AssertNotCalled(t, "ListGuilds", mock.Anything)
}

func TestNextMidnightUTC(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"mid-afternoon",
			time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC),
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			"exactly midnight schedules the next day",
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			"end of year wraps",
			time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"non-utc input is normalized",
			time.Date(2026, 6, 30, 23, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
			time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextMidnightUTC(tt.now))
		})
	}
}
