// Package schedule runs configured topics at their weekly or daily slots.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Job is the work executed at each slot.
type Job func(ctx context.Context, topic string) error

// Entry is one recurring slot for a topic.
type Entry struct {
	Topic string
	Day   string // "daily" or a lowercase weekday name
	At    string // "15:04" wall-clock time
}

// Scheduler fires entries at their slots, one run at a time. Runs never
// overlap; a slot reached while a run is in flight waits for the tick after
// the run finishes.
type Scheduler struct {
	entries []Entry
	job     Job
	log     *zap.Logger
	now     func() time.Time
	tick    time.Duration
}

// New builds a scheduler over the given entries.
func New(entries []Entry, job Job, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, e := range entries {
		if _, _, err := parseAt(e.At); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.Topic, err)
		}
		if _, err := parseDay(e.Day); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.Topic, err)
		}
	}
	return &Scheduler{
		entries: entries,
		job:     job,
		log:     logger,
		now:     time.Now,
		tick:    time.Minute,
	}, nil
}

// WithClock overrides the time source. Test hook.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// NextRun returns when the entry next fires, strictly after from.
func NextRun(e Entry, from time.Time) time.Time {
	hour, minute, err := parseAt(e.At)
	if err != nil {
		return time.Time{}
	}
	day, err := parseDay(e.Day)
	if err != nil {
		return time.Time{}
	}

	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
	if e.Day == "daily" {
		if !next.After(from) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}

	for next.Weekday() != day || !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks, firing due entries until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	due := make(map[string]time.Time, len(s.entries))
	for _, e := range s.entries {
		due[e.Topic] = NextRun(e, s.now())
		s.log.Info("topic scheduled",
			zap.String("topic", e.Topic),
			zap.Time("next_run", due[e.Topic]))
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.now()
			for _, e := range s.entries {
				if now.Before(due[e.Topic]) {
					continue
				}
				s.log.Info("scheduled run starting", zap.String("topic", e.Topic))
				if err := s.job(ctx, e.Topic); err != nil {
					s.log.Error("scheduled run failed",
						zap.String("topic", e.Topic), zap.Error(err))
				}
				due[e.Topic] = NextRun(e, s.now())
				s.log.Info("next run computed",
					zap.String("topic", e.Topic),
					zap.Time("next_run", due[e.Topic]))
			}
		}
	}
}

func parseAt(at string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid schedule time %q: %w", at, err)
	}
	return t.Hour(), t.Minute(), nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseDay(day string) (time.Weekday, error) {
	lower := strings.ToLower(day)
	if lower == "daily" {
		return time.Sunday, nil
	}
	if wd, ok := weekdays[lower]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("invalid schedule day %q", day)
}
