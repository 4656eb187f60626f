package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridline-ai/graphflow"
)

func testGraph(graphID string) *graphflow.Graph {
	return &graphflow.Graph{
		GraphID:   graphID,
		StartNode: "a",
		Nodes:     []string{"a", "b"},
		Edges: map[string]*graphflow.Edge{
			"a": {
				DefaultNext: "b",
				Branches:    []*graphflow.Branch{{Predicate: "ready", Target: "b"}},
			},
		},
	}
}

func testRun(runID, graphID string) *graphflow.Run {
	run := graphflow.NewRun(runID, graphID)
	run.Status = graphflow.RunStatusCompleted
	run.Iteration = 2
	run.Log = []*graphflow.LogEntry{
		{Node: "a", Iteration: 1, Event: graphflow.EventExecuted},
		{Node: "b", Iteration: 2, Event: graphflow.EventExecuted},
	}
	run.FinalState = graphflow.NewState()
	run.FinalState.Data["done"] = true
	return run
}

// runStoreContract exercises the behavior every Store implementation
// must provide.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("missing graph", func(t *testing.T) {
		_, err := s.GetGraph(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("graph round trip", func(t *testing.T) {
		require.NoError(t, s.SaveGraph(ctx, testGraph("graph-1")))
		got, err := s.GetGraph(ctx, "graph-1")
		require.NoError(t, err)
		require.Equal(t, "graph-1", got.GraphID)
		require.Equal(t, "a", got.StartNode)
		require.Len(t, got.Edges["a"].Branches, 1)
	})

	t.Run("graph overwrite", func(t *testing.T) {
		g := testGraph("graph-2")
		require.NoError(t, s.SaveGraph(ctx, g))
		g2 := testGraph("graph-2")
		g2.StartNode = "b"
		require.NoError(t, s.SaveGraph(ctx, g2))
		got, err := s.GetGraph(ctx, "graph-2")
		require.NoError(t, err)
		require.Equal(t, "b", got.StartNode)
	})

	t.Run("missing run", func(t *testing.T) {
		_, err := s.GetRun(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("run round trip", func(t *testing.T) {
		require.NoError(t, s.SaveRun(ctx, testRun("run-1", "graph-1")))
		got, err := s.GetRun(ctx, "run-1")
		require.NoError(t, err)
		require.Equal(t, "run-1", got.RunID)
		require.Equal(t, graphflow.RunStatusCompleted, got.Status)
		require.Len(t, got.Log, 2)
		require.NotNil(t, got.FinalState)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}
