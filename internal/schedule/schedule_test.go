package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunDaily(t *testing.T) {
	e := Entry{Topic: "nba", Day: "daily", At: "16:00"}

	// Before today's slot: fires today.
	from := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC) // Monday
	assert.Equal(t, time.Date(2025, 11, 3, 16, 0, 0, 0, time.UTC), NextRun(e, from))

	// Exactly at the slot: fires tomorrow, never at from itself.
	from = time.Date(2025, 11, 3, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 4, 16, 0, 0, 0, time.UTC), NextRun(e, from))

	// After the slot: fires tomorrow.
	from = time.Date(2025, 11, 3, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 4, 16, 0, 0, 0, time.UTC), NextRun(e, from))
}

func TestNextRunWeekly(t *testing.T) {
	e := Entry{Topic: "nfl", Day: "tuesday", At: "06:00"}

	// Monday: fires tomorrow morning.
	from := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	next := NextRun(e, from)
	assert.Equal(t, time.Tuesday, next.Weekday())
	assert.Equal(t, time.Date(2025, 11, 4, 6, 0, 0, 0, time.UTC), next)

	// Tuesday after the slot: fires next week.
	from = time.Date(2025, 11, 4, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 11, 6, 0, 0, 0, time.UTC), NextRun(e, from))

	// Tuesday before the slot: fires the same day.
	from = time.Date(2025, 11, 4, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 4, 6, 0, 0, 0, time.UTC), NextRun(e, from))
}

func TestNewRejectsBadEntries(t *testing.T) {
	_, err := New([]Entry{{Topic: "nfl", Day: "tuesday", At: "25:99"}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule time")

	_, err = New([]Entry{{Topic: "nfl", Day: "someday", At: "06:00"}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule day")
}

func TestRunFiresDueEntryAndReschedules(t *testing.T) {
	// The first clock reading schedules the 12:30 slot for today; every
	// later reading is past the slot, so the first tick fires the job.
	start := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(31 * time.Minute)
	}

	fired := make(chan string, 1)
	job := func(ctx context.Context, topic string) error {
		fired <- topic
		return nil
	}

	s, err := New([]Entry{{Topic: "nfl", Day: "daily", At: "12:30"}}, job, nil)
	require.NoError(t, err)
	s.WithClock(clock)
	s.tick = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case topic := <-fired:
		assert.Equal(t, "nfl", topic)
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
