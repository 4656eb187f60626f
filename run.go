package graphflow

import (
	"time"

	"go.jetify.com/typeid"
)

// NewRunID returns a new identifier for a run.
func NewRunID() string {
	id, err := typeid.WithPrefix("run")
	if err != nil {
		panic(err)
	}
	return id.String()
}

// NewGraphID returns a new identifier for a stored graph.
func NewGraphID() string {
	id, err := typeid.WithPrefix("graph")
	if err != nil {
		panic(err)
	}
	return id.String()
}

// RunStatus represents the status of a run. A run starts in
// RunStatusRunning and ends in exactly one of the terminal statuses.
type RunStatus string

const (
	RunStatusRunning       RunStatus = "running"
	RunStatusCompleted     RunStatus = "completed"
	RunStatusFailed        RunStatus = "failed"
	RunStatusMaxIterations RunStatus = "stopped_max_iterations"
)

// Terminal returns true for statuses that end a run.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusMaxIterations:
		return true
	}
	return false
}

// Event classifies a run log entry.
type Event string

const (
	// EventExecuted records a successful node execution. The entry
	// carries a full snapshot of the resulting state.
	EventExecuted Event = "executed"

	// EventError records a node execution that returned or raised an
	// error. The run fails.
	EventError Event = "error"

	// EventMissingNode records an attempt to execute a node with no
	// registered step implementation. The run fails.
	EventMissingNode Event = "missing_node"
)

// LogEntry is one structured event in a run's execution log. Every
// node-execution attempt produces exactly one entry; entries are never
// rewritten or removed.
type LogEntry struct {
	Node      string `json:"node"`
	Iteration int    `json:"iteration"`
	Event     Event  `json:"event"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	State     *State `json:"state,omitempty"`
}

// Run is the record of one execution of a graph. It is created by the
// caller with identifiers set, mutated exclusively by the engine for the
// duration of the run, and immutable once a terminal status is assigned.
type Run struct {
	RunID       string      `json:"run_id"`
	GraphID     string      `json:"graph_id"`
	CurrentNode string      `json:"current_node,omitempty"`
	Iteration   int         `json:"iteration"`
	Status      RunStatus   `json:"status"`
	Log         []*LogEntry `json:"log"`
	FinalState  *State      `json:"final_state,omitempty"`
	StartTime   time.Time   `json:"start_time,omitzero"`
	EndTime     time.Time   `json:"end_time,omitzero"`
}

// NewRun returns an empty run record ready to be passed to the engine.
func NewRun(runID, graphID string) *Run {
	return &Run{
		RunID:   runID,
		GraphID: graphID,
		Status:  RunStatusRunning,
	}
}

// EntriesByEvent returns the log entries matching the given event, in
// append order.
func (r *Run) EntriesByEvent(event Event) []*LogEntry {
	var entries []*LogEntry
	for _, entry := range r.Log {
		if entry.Event == event {
			entries = append(entries, entry)
		}
	}
	return entries
}

// VisitedNodes returns the node name of every execution attempt, in order.
func (r *Run) VisitedNodes() []string {
	nodes := make([]string, 0, len(r.Log))
	for _, entry := range r.Log {
		nodes = append(nodes, entry.Node)
	}
	return nodes
}
