package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
)

// fakeClock pins the scheduler to a fixed instant.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.current.Add(d)
	return ch
}

// enqueueCall records one dispatched job.
type enqueueCall struct {
	userID int64
	delay  time.Duration
}

// fakeDispatcher records enqueued report jobs.
type fakeDispatcher struct {
	calls   []enqueueCall
	failFor int64
}

func (d *fakeDispatcher) Enqueue(ctx context.Context, p queue.Payload, delay time.Duration) (uuid.UUID, error) {
	payload, ok := p.(*queue.DailyReportPayload)
	if !ok {
		return uuid.Nil, errors.New("unexpected payload kind")
	}
	if d.failFor != 0 && payload.UserID == d.failFor {
		return uuid.Nil, errors.New("queue unavailable")
	}
	d.calls = append(d.calls, enqueueCall{userID: payload.UserID, delay: delay})
	return uuid.New(), nil
}

// userList is a fixed UserSource.
type userList struct {
	users []domain.User
	err   error
}

func (l *userList) List(ctx context.Context) ([]domain.User, error) { return l.users, l.err }

func user(id int64, enabled bool, freq domain.EmailFrequency) domain.User {
	return domain.User{
		ID: id,
		Preferences: domain.UserPreferences{
			NotificationsEnabled: enabled,
			EmailFrequency:       freq,
		},
	}
}

func newTestScheduler(t *testing.T, users []domain.User, now time.Time) (*Scheduler, *fakeDispatcher) {
	t.Helper()

	dispatcher := &fakeDispatcher{}
	s, err := New(&userList{users: users}, dispatcher, Config{
		FireTime:      "08:00",
		Stagger:       5 * time.Second,
		WeeklyAnchor:  time.Monday,
		MonthlyAnchor: 1,
	}, &fakeClock{current: now}, nil)
	require.NoError(t, err)
	return s, dispatcher
}

func TestFanOutStaggersEligibleUsers(t *testing.T) {
	t.Parallel()

	// A Wednesday, mid-month: only daily users qualify.
	now := time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC)
	users := []domain.User{
		user(1, true, domain.EmailFrequencyDaily),
		user(2, false, domain.EmailFrequencyDaily),
		user(3, true, domain.EmailFrequencyDaily),
		user(4, true, domain.EmailFrequencyWeekly),
	}
	s, dispatcher := newTestScheduler(t, users, now)

	require.NoError(t, s.FanOut(context.Background()))

	require.Len(t, dispatcher.calls, 2, "only enabled daily users should get a report today")
	assert.Equal(t, enqueueCall{userID: 1, delay: 0}, dispatcher.calls[0])
	assert.Equal(t, enqueueCall{userID: 3, delay: 5 * time.Second}, dispatcher.calls[1],
		"the stagger index counts enqueued users, not list position")
}

func TestFanOutFrequencyGates(t *testing.T) {
	t.Parallel()

	users := []domain.User{
		user(1, true, domain.EmailFrequencyDaily),
		user(2, true, domain.EmailFrequencyWeekly),
		user(3, true, domain.EmailFrequencyMonthly),
	}

	testCases := []struct {
		name     string
		now      time.Time
		expected []int64
	}{
		{
			name:     "ordinary weekday",
			now:      time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC), // Wednesday the 11th
			expected: []int64{1},
		},
		{
			name:     "weekly anchor day",
			now:      time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC), // Monday the 9th
			expected: []int64{1, 2},
		},
		{
			name:     "monthly anchor date",
			now:      time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), // Sunday the 1st
			expected: []int64{1, 3},
		},
		{
			name:     "weekly anchor that is also the first",
			now:      time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC), // Monday the 1st
			expected: []int64{1, 2, 3},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, dispatcher := newTestScheduler(t, users, tc.now)
			require.NoError(t, s.FanOut(context.Background()))

			var got []int64
			for _, call := range dispatcher.calls {
				got = append(got, call.userID)
			}
			assert.Equal(t, tc.expected, got, "the frequency gates are mutually exclusive")
		})
	}
}

func TestFanOutContinuesPastEnqueueFailures(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC)
	users := []domain.User{
		user(1, true, domain.EmailFrequencyDaily),
		user(2, true, domain.EmailFrequencyDaily),
		user(3, true, domain.EmailFrequencyDaily),
	}
	dispatcher := &fakeDispatcher{failFor: 2}
	s, err := New(&userList{users: users}, dispatcher, Config{FireTime: "08:00"},
		&fakeClock{current: now}, nil)
	require.NoError(t, err)

	require.NoError(t, s.FanOut(context.Background()))

	require.Len(t, dispatcher.calls, 2, "one failed enqueue must not stop the fan-out")
	assert.Equal(t, int64(1), dispatcher.calls[0].userID)
	assert.Equal(t, int64(3), dispatcher.calls[1].userID)
	assert.Equal(t, 5*time.Second, dispatcher.calls[1].delay,
		"a failed enqueue does not consume a stagger slot")
}

func TestFanOutPropagatesListFailure(t *testing.T) {
	t.Parallel()

	listErr := errors.New("db down")
	s, err := New(&userList{err: listErr}, &fakeDispatcher{}, Config{FireTime: "08:00"},
		&fakeClock{current: time.Now()}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.FanOut(context.Background()), listErr)
}

func TestNewRejectsBadFireTime(t *testing.T) {
	t.Parallel()

	_, err := New(&userList{}, &fakeDispatcher{}, Config{FireTime: "8 o'clock"}, nil, nil)

	assert.Error(t, err, "an unparseable fire time should fail construction")
}

func TestNextFire(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(t, nil, time.Time{})

	testCases := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{
			name:     "before the fire time fires today",
			now:      time.Date(2025, 6, 11, 6, 30, 0, 0, time.UTC),
			expected: time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "after the fire time fires tomorrow",
			now:      time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "exactly at the fire time fires tomorrow",
			now:      time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, s.nextFire(tc.now))
		})
	}
}
