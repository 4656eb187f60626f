package steps

import (
	"context"

	"github.com/gridline-ai/graphflow"
)

// CheckComplexityStep scores the code's complexity from the function
// count and code length, storing the result under "complexity".
type CheckComplexityStep struct{}

func (s *CheckComplexityStep) Apply(ctx context.Context, state *graphflow.State, tools *graphflow.ToolRegistry) (*graphflow.State, error) {
	functions := stringSliceValue(state.Data["functions"])
	code := stringValue(state.Data["code"])

	score := len(functions)*5 + len(code)/500
	if score > 100 {
		score = 100
	}

	state.Data["complexity"] = map[string]any{
		"score":          score,
		"function_count": len(functions),
		"code_len":       len(code),
	}
	return state, nil
}
