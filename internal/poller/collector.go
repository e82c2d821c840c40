package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/rail-data/internal/model"
)

// Fetcher performs one poll against the upstream feed.
type Fetcher interface {
	FetchPositions(ctx context.Context) (model.Snapshot, error)
}

// SnapshotHandler receives fetched snapshots.
type SnapshotHandler interface {
	HandleSnapshot(ctx context.Context, snapshot model.Snapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(context.Context, model.Snapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(ctx context.Context, s model.Snapshot) error {
	return f(ctx, s)
}

// PollObserver is told the outcome of every poll.
type PollObserver interface {
	ObservePoll(duration time.Duration, err error)
}

// Collector is the task the scheduler fires: fetch, then hand off.
type Collector struct {
	fetcher  Fetcher
	handlers []SnapshotHandler
	observer PollObserver
	logger   *slog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithObserver reports every poll outcome to o.
func WithObserver(o PollObserver) CollectorOption {
	return func(c *Collector) {
		c.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCollector creates a Collector running handlers in order after each fetch.
func NewCollector(fetcher Fetcher, handlers []SnapshotHandler, opts ...CollectorOption) *Collector {
	c := &Collector{
		fetcher:  fetcher,
		handlers: handlers,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Poll fetches one snapshot and runs every handler in order. A fetch failure
// skips the handlers; handler failures do not stop later handlers and are joined
// into the returned error.
func (c *Collector) Poll(ctx context.Context) error {
	start := time.Now()

	snap, err := c.fetcher.FetchPositions(ctx)
	if err != nil {
		c.observe(time.Since(start), err)
		return fmt.Errorf("fetch positions: %w", err)
	}

	var errs []error
	for _, h := range c.handlers {
		if err := h.HandleSnapshot(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	err = errors.Join(errs...)

	duration := time.Since(start)
	c.observe(duration, err)

	c.logger.Info("poll complete",
		"snapshot_id", snap.ID,
		"polled_at", snap.PolledAt,
		"records", len(snap.Records),
		"handler_errors", len(errs),
		"duration", duration,
	)
	return err
}

func (c *Collector) observe(d time.Duration, err error) {
	if c.observer != nil {
		c.observer.ObservePoll(d, err)
	}
}
