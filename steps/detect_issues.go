package steps

import (
	"context"

	"github.com/gridline-ai/graphflow"
)

// DetectIssuesStep flags readability issues based on the complexity
// score, storing them under "issues".
type DetectIssuesStep struct{}

func (s *DetectIssuesStep) Apply(ctx context.Context, state *graphflow.State, tools *graphflow.ToolRegistry) (*graphflow.State, error) {
	complexity := intValue(mapValue(state.Data["complexity"])["score"], 0)

	issues := []string{}
	if complexity > 60 {
		issues = append(issues, "High complexity may reduce readability")
	}
	if complexity > 80 {
		issues = append(issues, "Refactor large functions into smaller units")
	}

	state.Data["issues"] = map[string]any{
		"count": len(issues),
		"items": issues,
	}
	return state, nil
}
