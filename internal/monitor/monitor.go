// Package monitor implements the background polling loop that feeds the
// clipboard into the classify → dedup → store pipeline. The clipboard
// source and the clock are injected so tests can drive ticks
// deterministically without OS clipboard access or real timing.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/clipd/clipd/internal/clip"
	"github.com/clipd/clipd/internal/clock"
	"github.com/clipd/clipd/internal/history"
)

const (
	// DefaultInterval is the poll interval between clipboard reads.
	DefaultInterval = 500 * time.Millisecond

	// DefaultReadTimeout bounds a single clipboard read; a read that
	// exceeds it counts as a failed tick, not a hang.
	DefaultReadTimeout = time.Second
)

// Source is the clipboard-read capability consumed by the loop.
type Source interface {
	// Read returns the current clipboard snapshot. It must respect ctx
	// cancellation; another process holding the clipboard must not stall
	// the loop past the read timeout.
	Read(ctx context.Context) (clip.Snapshot, error)
}

// Options configures a Monitor.
type Options struct {
	Interval    time.Duration
	ReadTimeout time.Duration
	Clock       clock.Clock
	Logger      *slog.Logger
}

// Monitor is the long-lived sequential poll loop. It is the sole writer on
// the capture path; all loop state (last seen marker) is local, never
// process-wide.
type Monitor struct {
	manager     *history.Manager
	source      Source
	clk         clock.Clock
	interval    time.Duration
	readTimeout time.Duration
	log         *slog.Logger

	lastMarker string
}

// New creates a monitor feeding the given manager from the given source.
func New(manager *history.Manager, source Source, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Monitor{
		manager:     manager,
		source:      source,
		clk:         opts.Clock,
		interval:    opts.Interval,
		readTimeout: opts.ReadTimeout,
		log:         opts.Logger,
	}
}

// Run polls until ctx is cancelled. Every tick sleeps one interval, checks
// for cancellation, reads the clipboard under the read timeout, and runs
// the pipeline only when the raw snapshot's change marker moved. Read and
// storage failures skip the tick; the loop never stops on error.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("clipboard monitor started", "interval", m.interval)
	defer m.log.Info("clipboard monitor stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.clk.After(m.interval):
		}

		m.tick(ctx)
	}
}

// tick performs one observation. Each tick is a unit: either the pipeline
// completes or the tick's effect is dropped and retried on a later change.
func (m *Monitor) tick(ctx context.Context) {
	readCtx, cancel := context.WithTimeout(ctx, m.readTimeout)
	snap, err := m.source.Read(readCtx)
	cancel()
	if err != nil {
		// Transient by assumption (clipboard locked by another process);
		// retry next tick.
		m.log.Warn("clipboard read failed, skipping tick", "error", err)
		return
	}

	marker := clip.Marker(snap)
	if marker == m.lastMarker {
		return
	}

	item, ok := clip.Classify(snap)
	if !ok {
		// Empty or unsupported snapshot. Remember the marker so the same
		// unusable state is not re-inspected every tick.
		m.lastMarker = marker
		return
	}

	if _, err := m.manager.Capture(item); err != nil {
		// Leave lastMarker unchanged so the capture is retried when the
		// store recovers, even if the clipboard stays the same.
		m.log.Error("failed to store clipboard capture", "kind", item.Kind, "error", err)
		return
	}

	m.lastMarker = marker
	m.log.Debug("captured clipboard change", "kind", item.Kind, "preview", item.Preview)
}
