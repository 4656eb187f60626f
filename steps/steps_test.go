package steps

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridline-ai/graphflow"
)

func apply(t *testing.T, step graphflow.Step, state *graphflow.State) *graphflow.State {
	t.Helper()
	next, err := step.Apply(context.Background(), state, graphflow.NewToolRegistry())
	require.NoError(t, err)
	return next
}

func TestExtractFunctions(t *testing.T) {
	t.Run("finds definitions", func(t *testing.T) {
		state := graphflow.NewState()
		state.Data["code"] = "def alpha():\n    pass\n\ndef beta(x):\n    return x\n"
		state = apply(t, &ExtractFunctionsStep{}, state)
		require.Equal(t, []string{"alpha", "beta"}, state.Data["functions"])
	})

	t.Run("skips preamble", func(t *testing.T) {
		state := graphflow.NewState()
		state.Data["code"] = "import os\n\ndef only():\n    pass\n"
		state = apply(t, &ExtractFunctionsStep{}, state)
		require.Equal(t, []string{"only"}, state.Data["functions"])
	})

	t.Run("empty code", func(t *testing.T) {
		state := apply(t, &ExtractFunctionsStep{}, graphflow.NewState())
		require.Empty(t, state.Data["functions"])
	})
}

func TestCheckComplexity(t *testing.T) {
	state := graphflow.NewState()
	state.Data["functions"] = []string{"a", "b", "c"}
	state.Data["code"] = strings.Repeat("x", 1000)
	state = apply(t, &CheckComplexityStep{}, state)

	complexity := state.Data["complexity"].(map[string]any)
	require.Equal(t, 17, complexity["score"]) // 3*5 + 1000/500
	require.Equal(t, 3, complexity["function_count"])
	require.Equal(t, 1000, complexity["code_len"])

	t.Run("score is capped at 100", func(t *testing.T) {
		state := graphflow.NewState()
		state.Data["functions"] = make([]string, 30)
		state.Data["code"] = ""
		state = apply(t, &CheckComplexityStep{}, state)
		require.Equal(t, 100, state.Data["complexity"].(map[string]any)["score"])
	})
}

func TestDetectIssues(t *testing.T) {
	withComplexity := func(score int) *graphflow.State {
		state := graphflow.NewState()
		state.Data["complexity"] = map[string]any{"score": score}
		return apply(t, &DetectIssuesStep{}, state)
	}

	require.Equal(t, 0, withComplexity(50).Data["issues"].(map[string]any)["count"])
	require.Equal(t, 1, withComplexity(70).Data["issues"].(map[string]any)["count"])
	require.Equal(t, 2, withComplexity(90).Data["issues"].(map[string]any)["count"])
}

func TestSuggestImprovements(t *testing.T) {
	t.Run("clean code gets a light touch", func(t *testing.T) {
		state := graphflow.NewState()
		state.Data["issues"] = map[string]any{"count": 0}
		state = apply(t, &SuggestImprovementsStep{}, state)
		require.Len(t, state.Data["suggestions"], 1)
	})

	t.Run("issues bring the full list", func(t *testing.T) {
		state := graphflow.NewState()
		state.Data["issues"] = map[string]any{"count": 2}
		state = apply(t, &SuggestImprovementsStep{}, state)
		require.Len(t, state.Data["suggestions"], 3)
	})
}

func TestEvaluateQuality(t *testing.T) {
	state := graphflow.NewState()
	state.Data["complexity"] = map[string]any{"score": 30}
	state.Data["issues"] = map[string]any{"count": 2}
	state = apply(t, &EvaluateQualityStep{}, state)
	require.Equal(t, 60, state.Data["quality_score"]) // 100 - 30 - 10

	t.Run("floors at zero", func(t *testing.T) {
		state := graphflow.NewState()
		state.Data["complexity"] = map[string]any{"score": 100}
		state.Data["issues"] = map[string]any{"count": 5}
		state = apply(t, &EvaluateQualityStep{}, state)
		require.Equal(t, 0, state.Data["quality_score"])
	})
}

func TestQualityBelowThreshold(t *testing.T) {
	state := graphflow.NewState()
	state.Data["quality_score"] = 60

	// Default threshold applies when the state carries none.
	matched, err := QualityBelowThreshold(state)
	require.NoError(t, err)
	require.True(t, matched)

	state.Data["quality_threshold"] = 50
	matched, err = QualityBelowThreshold(state)
	require.NoError(t, err)
	require.False(t, matched)

	// JSON-decoded numbers arrive as float64.
	state.Data["quality_score"] = float64(40)
	matched, err = QualityBelowThreshold(state)
	require.NoError(t, err)
	require.True(t, matched)
}

func TestCodeReviewGraphEndToEnd(t *testing.T) {
	graph := CodeReviewGraph("code-review")
	require.NoError(t, graphflow.ValidateGraph(graph))

	registry := graphflow.NewRegistry()
	Register(registry)

	engine, err := graphflow.NewEngine(graphflow.EngineOptions{Registry: registry})
	require.NoError(t, err)

	initial := graphflow.NewState()
	initial.Data["code"] = "def alpha():\n    pass\n\ndef beta(x):\n    return x\n"

	run, err := engine.Execute(context.Background(), graph, initial, nil, graphflow.NewRun(graphflow.NewRunID(), graph.GraphID))
	require.NoError(t, err)

	// Two small functions score low complexity, so quality clears the
	// default threshold on the first pass.
	require.Equal(t, graphflow.RunStatusCompleted, run.Status)
	require.Equal(t, 5, run.Iteration)
	require.Equal(t, []string{
		"extract_functions",
		"check_complexity",
		"detect_issues",
		"suggest_improvements",
		"evaluate_quality",
	}, run.VisitedNodes())
	require.Equal(t, 90, run.FinalState.Data["quality_score"])
}

func TestCodeReviewGraphLoopsUntilCap(t *testing.T) {
	// A threshold no score can reach keeps the loop spinning until the
	// engine's iteration cap stops the run.
	registry := graphflow.NewRegistry()
	Register(registry)

	engine, err := graphflow.NewEngine(graphflow.EngineOptions{Registry: registry})
	require.NoError(t, err)

	initial := graphflow.NewState()
	initial.Data["code"] = "def alpha():\n    pass\n"
	initial.Data["quality_threshold"] = 101

	graph := CodeReviewGraph("code-review")
	run, err := engine.Execute(context.Background(), graph, initial, nil, graphflow.NewRun(graphflow.NewRunID(), graph.GraphID))
	require.NoError(t, err)
	require.Equal(t, graphflow.RunStatusMaxIterations, run.Status)
	require.Equal(t, graphflow.DefaultMaxIterations, run.Iteration)
}
