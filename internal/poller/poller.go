package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Unit is a scheduling interval unit.
type Unit string

// Accepted units.
const (
	Seconds Unit = "s"
	Minutes Unit = "m"
	Hours   Unit = "h"
	Days    Unit = "d"
)

// ParseUnit accepts s, m, h, d or their spelled-out plural forms, in lower case
// only, matching the config file rule.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "s", "seconds":
		return Seconds, nil
	case "m", "minutes":
		return Minutes, nil
	case "h", "hours":
		return Hours, nil
	case "d", "days":
		return Days, nil
	}
	return "", &ConfigError{Field: "unit", Value: s, Reason: "must be one of 's', 'm', 'h' or 'd'"}
}

// Duration returns the length of one unit.
func (u Unit) Duration() time.Duration {
	switch u {
	case Seconds:
		return time.Second
	case Minutes:
		return time.Minute
	case Hours:
		return time.Hour
	case Days:
		return 24 * time.Hour
	}
	return 0
}

// ConfigError is returned before anything is scheduled.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid schedule %s %q: %s", e.Field, e.Value, e.Reason)
}

// Schedule describes one collection window.
type Schedule struct {
	End   time.Time // No fire happens at or after End
	Every int       // Number of units between fires
	Unit  string    // s, m, h or d
}

// Interval validates the schedule and returns the time between fires.
func (s Schedule) Interval() (time.Duration, error) {
	unit, err := ParseUnit(s.Unit)
	if err != nil {
		return 0, err
	}
	if s.Every <= 0 {
		return 0, &ConfigError{Field: "every", Value: fmt.Sprint(s.Every), Reason: "must be > 0"}
	}
	return time.Duration(s.Every) * unit.Duration(), nil
}

// Task is invoked on every fire.
type Task func(ctx context.Context) error

// Stats summarises a finished run.
type Stats struct {
	Fires    int
	Failures int
}

// Scheduler runs a Task on a Schedule in the calling goroutine.
type Scheduler struct {
	logger *slog.Logger
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
}

// New creates a Scheduler on the wall clock.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger: logger,
		now:    time.Now,
		after:  time.After,
	}
}

// Run is shorthand for New(logger).Run(ctx, sched, task).
func Run(ctx context.Context, sched Schedule, task Task, logger *slog.Logger) (Stats, error) {
	return New(logger).Run(ctx, sched, task)
}

// Run blocks until sched.End, firing task immediately and then every interval
// measured from the start of the previous fire. A fire that overruns the
// interval is followed at once by the next one; missed fires are not queued.
// Task errors are logged and counted. Only an invalid schedule or context
// cancellation makes Run return an error.
func (s *Scheduler) Run(ctx context.Context, sched Schedule, task Task) (Stats, error) {
	var stats Stats

	interval, err := sched.Interval()
	if err != nil {
		return stats, err
	}

	s.logger.Info("schedule started",
		"end", sched.End,
		"interval", interval,
	)

	next := s.now()
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		now := s.now()
		if !now.Before(sched.End) {
			break
		}

		if !now.Before(next) {
			stats.Fires++
			if err := task(ctx); err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				stats.Failures++
				s.logger.Warn("scheduled poll failed",
					"fire", stats.Fires,
					"error", err,
				)
			}
			next = now.Add(interval)
			continue
		}

		wake := next
		if sched.End.Before(wake) {
			wake = sched.End
		}
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-s.after(wake.Sub(now)):
		}
	}

	s.logger.Info("schedule finished",
		"fires", stats.Fires,
		"failures", stats.Failures,
	)
	return stats, nil
}
