package graphflow

import (
	"context"
	"fmt"

	"github.com/gridline-ai/graphflow/script"
)

// ScriptPredicate evaluates a compiled expression against state. The
// expression sees the state's payload as "data" and its auxiliary values
// as "metadata", plus the compiler's builtins. The result is interpreted
// by truthiness.
type ScriptPredicate struct {
	code script.Script
}

// NewScriptPredicate compiles an expression into a predicate. When
// compiler is nil a Risor engine with default globals is used.
func NewScriptPredicate(compiler script.Compiler, code string) (*ScriptPredicate, error) {
	if compiler == nil {
		globals := script.DefaultGlobals()
		// Declared here so the names are known at compile time; the
		// real values are bound per evaluation.
		globals["data"] = map[string]any{}
		globals["metadata"] = map[string]any{}
		compiler = script.NewRisorScriptingEngine(globals)
	}
	compiled, err := compiler.Compile(context.Background(), code)
	if err != nil {
		return nil, fmt.Errorf("failed to compile predicate expression: %w", err)
	}
	return &ScriptPredicate{code: compiled}, nil
}

func (p *ScriptPredicate) Evaluate(state *State) (bool, error) {
	result, err := p.code.Evaluate(context.Background(), map[string]any{
		"data":     state.Data,
		"metadata": state.Metadata,
	})
	if err != nil {
		return false, err
	}
	return result.IsTruthy(), nil
}
