package steps

import (
	"context"

	"github.com/gridline-ai/graphflow"
)

// EvaluateQualityStep computes an overall quality score in [0, 100] that
// decreases with complexity and issue count, stored under
// "quality_score".
type EvaluateQualityStep struct{}

func (s *EvaluateQualityStep) Apply(ctx context.Context, state *graphflow.State, tools *graphflow.ToolRegistry) (*graphflow.State, error) {
	complexity := intValue(mapValue(state.Data["complexity"])["score"], 0)
	issueCount := intValue(mapValue(state.Data["issues"])["count"], 0)

	quality := 100 - complexity - issueCount*5
	if quality < 0 {
		quality = 0
	}

	state.Data["quality_score"] = quality
	return state, nil
}
