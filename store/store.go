// Package store provides persistence for graph definitions and finished
// run records, with in-memory, Redis, and Postgres backends.
package store

import (
	"context"
	"errors"

	"github.com/gridline-ai/graphflow"
)

// ErrNotFound is returned when a graph or run does not exist.
var ErrNotFound = errors.New("not found")

// GraphStore persists graph definitions keyed by graph ID.
type GraphStore interface {
	SaveGraph(ctx context.Context, graph *graphflow.Graph) error
	GetGraph(ctx context.Context, graphID string) (*graphflow.Graph, error)
}

// RunStore persists run records keyed by run ID.
type RunStore interface {
	SaveRun(ctx context.Context, run *graphflow.Run) error
	GetRun(ctx context.Context, runID string) (*graphflow.Run, error)
}

// Store combines graph and run persistence.
type Store interface {
	GraphStore
	RunStore
}
