// Package steps provides the built-in code review workflow: five steps
// that extract functions from source code, score its complexity, detect
// issues, suggest improvements, and evaluate overall quality, with a
// predicate that loops the tail of the workflow until quality clears a
// threshold.
package steps

import (
	"github.com/gridline-ai/graphflow"
)

// DefaultQualityThreshold is used when the state carries no
// "quality_threshold" value.
const DefaultQualityThreshold = 70

// Register installs the code review steps and predicates into a registry.
func Register(reg *graphflow.Registry) {
	reg.RegisterStep("extract_functions", &ExtractFunctionsStep{})
	reg.RegisterStep("check_complexity", &CheckComplexityStep{})
	reg.RegisterStep("detect_issues", &DetectIssuesStep{})
	reg.RegisterStep("suggest_improvements", &SuggestImprovementsStep{})
	reg.RegisterStep("evaluate_quality", &EvaluateQualityStep{})

	reg.RegisterPredicate("quality_below_threshold", graphflow.PredicateFunc(QualityBelowThreshold))
}

// CodeReviewGraph builds the canonical code review graph: a linear chain
// that loops back to detect_issues until quality clears the threshold.
func CodeReviewGraph(graphID string) *graphflow.Graph {
	return &graphflow.Graph{
		GraphID:   graphID,
		StartNode: "extract_functions",
		Nodes: []string{
			"extract_functions",
			"check_complexity",
			"detect_issues",
			"suggest_improvements",
			"evaluate_quality",
		},
		Edges: map[string]*graphflow.Edge{
			"extract_functions":    {DefaultNext: "check_complexity"},
			"check_complexity":     {DefaultNext: "detect_issues"},
			"detect_issues":        {DefaultNext: "suggest_improvements"},
			"suggest_improvements": {DefaultNext: "evaluate_quality"},
			"evaluate_quality": {
				Branches: []*graphflow.Branch{
					{Predicate: "quality_below_threshold", Target: "detect_issues"},
				},
			},
		},
	}
}

// QualityBelowThreshold reports whether the computed quality score is
// still under the configured threshold.
func QualityBelowThreshold(state *graphflow.State) (bool, error) {
	quality := intValue(state.Data["quality_score"], 0)
	threshold := intValue(state.Data["quality_threshold"], DefaultQualityThreshold)
	return quality < threshold, nil
}

// intValue coerces a state value to int. JSON-decoded numbers arrive as
// float64.
func intValue(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func stringSliceValue(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		result := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

func mapValue(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
