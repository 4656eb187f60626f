package graphflow

import (
	"context"
)

// RunLogger persists run log entries as they are appended, so downstream
// tooling can reconstruct state evolution from raw snapshots even while a
// run is in flight.
type RunLogger interface {
	// LogEntry records one appended log entry for a run
	LogEntry(ctx context.Context, runID string, entry *LogEntry) error

	// GetRunHistory retrieves the recorded log for a run
	GetRunHistory(ctx context.Context, runID string) ([]*LogEntry, error)
}
