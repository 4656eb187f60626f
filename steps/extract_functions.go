package steps

import (
	"context"
	"strings"

	"github.com/gridline-ai/graphflow"
)

// ExtractFunctionsStep finds function names in the code under review and
// stores them under "functions". Extraction is a heuristic split on "def "
// markers, good enough to feed the downstream scoring steps.
type ExtractFunctionsStep struct{}

func (s *ExtractFunctionsStep) Apply(ctx context.Context, state *graphflow.State, tools *graphflow.ToolRegistry) (*graphflow.State, error) {
	code := stringValue(state.Data["code"])

	var functions []string
	for _, chunk := range strings.Split(code, "def ") {
		name := strings.TrimSpace(strings.SplitN(chunk, "(", 2)[0])
		if name != "" && !strings.Contains(name, "\n") {
			functions = append(functions, name)
		}
	}
	// Drop the preamble before the first definition
	if len(functions) > 0 && !strings.HasPrefix(code, "def ") {
		functions = functions[1:]
	}

	state.Data["functions"] = functions
	return state, nil
}
