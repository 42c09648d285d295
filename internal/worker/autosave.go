// Package worker hosts the background loops that run alongside the HTTP server.
package worker

import (
	"bytes"
	"context"
	"log/slog"
	"time"
)

// SnapshotSource produces a serialized snapshot of the working session.
// This interface allows testing with mock implementations.
type SnapshotSource interface {
	Snapshot() ([]byte, error)
}

// SnapshotSink persists a serialized session snapshot.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, payload []byte) error
}

// AutosaveCoordinator periodically persists the working session so a restart
// resumes from the last saved state.
type AutosaveCoordinator struct {
	source   SnapshotSource
	sink     SnapshotSink
	interval time.Duration

	lastSaved []byte
}

// NewAutosaveCoordinator creates a coordinator that snapshots the session
// from source into sink every interval.
func NewAutosaveCoordinator(source SnapshotSource, sink SnapshotSink, interval time.Duration) *AutosaveCoordinator {
	return &AutosaveCoordinator{
		source:   source,
		sink:     sink,
		interval: interval,
	}
}

// Run starts the coordinator loop.
func (c *AutosaveCoordinator) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "autosave-coordinator",
		"action", "worker_started",
		"interval", c.interval.String(),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final save so nothing typed since the last tick is lost.
			c.save(context.WithoutCancel(ctx))
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "autosave-coordinator",
				"action", "worker_stopped",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			c.save(ctx)
		}
	}
}

// save persists one snapshot, skipping the write when nothing changed since
// the previous save.
func (c *AutosaveCoordinator) save(ctx context.Context) {
	payload, err := c.source.Snapshot()
	if err != nil {
		slog.Warn("session snapshot failed",
			"component", "worker",
			"worker", "autosave-coordinator",
			"action", "autosave_failed",
			"error", err,
		)
		return
	}

	if bytes.Equal(payload, c.lastSaved) {
		return
	}

	if err := c.sink.SaveSnapshot(ctx, payload); err != nil {
		if ctx.Err() != nil {
			return // Graceful shutdown, don't log as error
		}
		slog.Warn("session autosave failed",
			"component", "worker",
			"worker", "autosave-coordinator",
			"action", "autosave_failed",
			"error", err,
		)
		return
	}

	c.lastSaved = payload
	slog.Info("session autosaved",
		"component", "worker",
		"worker", "autosave-coordinator",
		"action", "autosave_complete",
		"bytes", len(payload),
	)
}
