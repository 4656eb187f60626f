package graphflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryLookups(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Step("missing")
	require.False(t, ok)
	_, ok = registry.Predicate("missing")
	require.False(t, ok)

	registry.RegisterStep("noop", StepFunc(func(ctx context.Context, state *State, tools *ToolRegistry) (*State, error) {
		return state, nil
	}))
	registry.RegisterPredicate("always", PredicateFunc(func(*State) (bool, error) {
		return true, nil
	}))

	step, ok := registry.Step("noop")
	require.True(t, ok)
	require.NotNil(t, step)

	predicate, ok := registry.Predicate("always")
	require.True(t, ok)
	matched, err := predicate.Evaluate(NewState())
	require.NoError(t, err)
	require.True(t, matched)

	require.Equal(t, []string{"noop"}, registry.StepNames())
}

func TestRegistryLastWriteWins(t *testing.T) {
	registry := NewRegistry()

	registry.RegisterStep("step", StepFunc(func(ctx context.Context, state *State, tools *ToolRegistry) (*State, error) {
		state.Data["version"] = 1
		return state, nil
	}))
	registry.RegisterStep("step", StepFunc(func(ctx context.Context, state *State, tools *ToolRegistry) (*State, error) {
		state.Data["version"] = 2
		return state, nil
	}))

	step, ok := registry.Step("step")
	require.True(t, ok)
	state, err := step.Apply(context.Background(), NewState(), NewToolRegistry())
	require.NoError(t, err)
	require.Equal(t, 2, state.Data["version"])
}

func TestToolRegistry(t *testing.T) {
	doubler := NewToolFunc("double", func(ctx context.Context, args map[string]any) (any, error) {
		n, _ := args["n"].(int)
		return n * 2, nil
	})
	tools := NewToolRegistry(doubler)

	tool, ok := tools.Get("double")
	require.True(t, ok)
	require.Equal(t, "double", tool.Name())

	result, err := tool.Call(context.Background(), map[string]any{"n": 21})
	require.NoError(t, err)
	require.Equal(t, 42, result)

	_, ok = tools.Get("missing")
	require.False(t, ok)

	replacement := NewToolFunc("double", func(ctx context.Context, args map[string]any) (any, error) {
		return 0, nil
	})
	tools.Register(replacement)
	tool, ok = tools.Get("double")
	require.True(t, ok)
	result, err = tool.Call(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, result)
}

func TestStateCopyIsolation(t *testing.T) {
	original := NewState()
	original.Data["key"] = "value"
	original.Metadata["source"] = "test"

	copied := original.Copy()
	copied.Data["key"] = "changed"
	copied.Metadata["source"] = "copy"

	require.Equal(t, "value", original.Data["key"])
	require.Equal(t, "test", original.Metadata["source"])

	var nilState *State
	require.NotNil(t, nilState.Copy())
}
