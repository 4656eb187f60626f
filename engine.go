package graphflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultMaxIterations is the hard cap on node-execution attempts per
// run, a safety valve against unbounded loops.
const DefaultMaxIterations = 20

// EngineOptions configures a new Engine.
type EngineOptions struct {
	Registry      *Registry
	Logger        *slog.Logger
	RunLogger     RunLogger
	MaxIterations int
}

// Engine drives runs of pre-validated graphs. It is stateless across
// runs: all per-run data lives in the Run record and State value, so one
// Engine may execute arbitrarily many runs concurrently.
type Engine struct {
	registry      *Registry
	logger        *slog.Logger
	runLogger     RunLogger
	maxIterations int
}

// NewEngine creates a new Engine.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RunLogger == nil {
		opts.RunLogger = NewNullRunLogger()
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	return &Engine{
		registry:      opts.Registry,
		logger:        opts.Logger,
		runLogger:     opts.RunLogger,
		maxIterations: opts.MaxIterations,
	}, nil
}

// Execute runs a graph from its start node to a terminal status, mutating
// and returning the given run record. The initial state is copied, never
// aliased back to the caller.
//
// Run outcomes are expressed through the record's status, not through the
// error return: a failing step marks the run failed and returns a nil
// error. The error return covers caller mistakes only.
//
// Each node-execution attempt happens exactly once, strictly in sequence.
// A step invocation is the only suspension point; cancellation, if
// needed, is the step's concern via ctx.
func (e *Engine) Execute(ctx context.Context, graph *Graph, initial *State, tools *ToolRegistry, run *Run) (*Run, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph is required")
	}
	if run == nil {
		return nil, fmt.Errorf("run is required")
	}
	if run.Status != RunStatusRunning {
		return nil, fmt.Errorf("run %q already has terminal status %q", run.RunID, run.Status)
	}
	if tools == nil {
		tools = NewToolRegistry()
	}

	logger := e.logger.With("run_id", run.RunID, "graph_id", graph.GraphID)

	state := initial.Copy()
	run.CurrentNode = graph.StartNode
	run.StartTime = time.Now()

	for {
		run.Iteration++
		node := run.CurrentNode

		step, ok := e.registry.Step(node)
		if !ok {
			run.Status = RunStatusFailed
			e.appendLog(ctx, run, &LogEntry{
				Node:      node,
				Iteration: run.Iteration,
				Event:     EventMissingNode,
				Message:   fmt.Sprintf("step %q not registered", node),
			})
			logger.Error("missing node", "node", node, "iteration", run.Iteration)
			break
		}

		// Steps receive a copy so a failing step cannot corrupt the
		// committed state through in-place mutation.
		next, err := invokeStep(ctx, step, state.Copy(), tools)
		if err != nil {
			// The state committed before this attempt survives as
			// the final state; whatever the step did is discarded.
			run.Status = RunStatusFailed
			e.appendLog(ctx, run, &LogEntry{
				Node:      node,
				Iteration: run.Iteration,
				Event:     EventError,
				Error:     err.Error(),
			})
			logger.Error("step failed", "node", node, "iteration", run.Iteration, "error", err)
			break
		}
		state = next
		e.appendLog(ctx, run, &LogEntry{
			Node:      node,
			Iteration: run.Iteration,
			Event:     EventExecuted,
			State:     state.Copy(),
		})
		logger.Debug("step executed", "node", node, "iteration", run.Iteration)

		edge, ok := graph.Edge(node)
		if !ok {
			run.Status = RunStatusCompleted
			break
		}

		target := e.computeNextNode(edge, state)
		if target == "" {
			run.Status = RunStatusCompleted
			break
		}
		run.CurrentNode = target

		if run.Iteration >= e.maxIterations {
			run.Status = RunStatusMaxIterations
			logger.Warn("iteration cap reached", "iterations", run.Iteration)
			break
		}
	}

	run.FinalState = state
	run.EndTime = time.Now()
	logger.Info("run finished",
		"status", run.Status,
		"iterations", run.Iteration,
		"duration", run.EndTime.Sub(run.StartTime))
	return run, nil
}

// computeNextNode resolves an edge to a target node name, or "" when the
// run should complete. Branches are evaluated in declared order and the
// first true predicate wins. A branch whose predicate is unregistered,
// returns an error, or panics is skipped: branch resolution fails open,
// falling through to later branches and finally to the default target.
func (e *Engine) computeNextNode(edge *Edge, state *State) string {
	for _, branch := range edge.Branches {
		predicate, ok := e.registry.Predicate(branch.Predicate)
		if !ok {
			continue
		}
		matched, err := evaluatePredicate(predicate, state)
		if err != nil {
			e.logger.Debug("predicate skipped", "predicate", branch.Predicate, "error", err)
			continue
		}
		if matched {
			return branch.Target
		}
	}
	return edge.DefaultNext
}

// appendLog appends an entry to the run log and forwards it to the run
// logger. A run logger failure is reported but never fails the run.
func (e *Engine) appendLog(ctx context.Context, run *Run, entry *LogEntry) {
	run.Log = append(run.Log, entry)
	if err := e.runLogger.LogEntry(ctx, run.RunID, entry); err != nil {
		e.logger.Error("failed to log run entry", "run_id", run.RunID, "error", err)
	}
}

// invokeStep calls a step, converting a panic into an error so a broken
// implementation fails its run instead of the process.
func invokeStep(ctx context.Context, step Step, state *State, tools *ToolRegistry) (next *State, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = nil
			err = fmt.Errorf("step panic: %v", r)
		}
	}()
	return step.Apply(ctx, state, tools)
}

// evaluatePredicate calls a predicate, converting a panic into an error.
func evaluatePredicate(predicate Predicate, state *State) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = fmt.Errorf("predicate panic: %v", r)
		}
	}()
	return predicate.Evaluate(state)
}
