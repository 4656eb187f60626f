package steps

import (
	"context"

	"github.com/gridline-ai/graphflow"
)

// SuggestImprovementsStep turns detected issues into suggestions, stored
// under "suggestions".
type SuggestImprovementsStep struct{}

func (s *SuggestImprovementsStep) Apply(ctx context.Context, state *graphflow.State, tools *graphflow.ToolRegistry) (*graphflow.State, error) {
	count := intValue(mapValue(state.Data["issues"])["count"], 0)

	var suggestions []string
	if count == 0 {
		suggestions = append(suggestions, "Add docstrings and type hints where missing")
	} else {
		suggestions = append(suggestions,
			"Introduce helper functions to reduce size",
			"Improve naming and add comments for clarity",
			"Add unit tests to cover complex paths",
		)
	}

	state.Data["suggestions"] = suggestions
	return state, nil
}
