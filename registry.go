package graphflow

import (
	"context"
	"sync"
)

// Step is a node implementation. It receives ownership of the state for
// the duration of the call and returns the state the run should continue
// with. Steps may perform I/O or long-running work and should honor ctx.
type Step interface {
	Apply(ctx context.Context, state *State, tools *ToolRegistry) (*State, error)
}

// StepFunc adapts a plain function to the Step interface.
type StepFunc func(ctx context.Context, state *State, tools *ToolRegistry) (*State, error)

func (f StepFunc) Apply(ctx context.Context, state *State, tools *ToolRegistry) (*State, error) {
	return f(ctx, state, tools)
}

// Predicate guards a branch. Implementations are expected to be fast and
// side-effect-free. A predicate error is never escalated: the engine
// treats it the same as returning false.
type Predicate interface {
	Evaluate(state *State) (bool, error)
}

// PredicateFunc adapts a plain function to the Predicate interface.
type PredicateFunc func(state *State) (bool, error)

func (f PredicateFunc) Evaluate(state *State) (bool, error) {
	return f(state)
}

// Registry holds the step and predicate tables a run resolves names
// against. Populate it during process setup, before any run starts; it is
// then safe to share across concurrent runs.
//
// Registering a name twice overwrites the previous binding.
type Registry struct {
	mutex      sync.RWMutex
	steps      map[string]Step
	predicates map[string]Predicate
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		steps:      map[string]Step{},
		predicates: map[string]Predicate{},
	}
}

// RegisterStep binds a step implementation to a node name.
func (r *Registry) RegisterStep(name string, step Step) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.steps[name] = step
}

// RegisterPredicate binds a predicate implementation to a name.
func (r *Registry) RegisterPredicate(name string, predicate Predicate) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.predicates[name] = predicate
}

// Step looks up the step registered under name.
func (r *Registry) Step(name string) (Step, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	step, ok := r.steps[name]
	return step, ok
}

// Predicate looks up the predicate registered under name.
func (r *Registry) Predicate(name string) (Predicate, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	predicate, ok := r.predicates[name]
	return predicate, ok
}

// StepNames returns the names of all registered steps.
func (r *Registry) StepNames() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	return names
}

// Tool is a named utility that step implementations may call. The engine
// never inspects or invokes tools itself.
type Tool interface {
	Name() string
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolFunc adapts a named function to the Tool interface.
type ToolFunc struct {
	name string
	fn   func(ctx context.Context, args map[string]any) (any, error)
}

// NewToolFunc creates a new ToolFunc.
func NewToolFunc(name string, fn func(ctx context.Context, args map[string]any) (any, error)) *ToolFunc {
	return &ToolFunc{name: name, fn: fn}
}

func (t *ToolFunc) Name() string {
	return t.name
}

func (t *ToolFunc) Call(ctx context.Context, args map[string]any) (any, error) {
	return t.fn(ctx, args)
}

// ToolRegistry is an injected side-channel of named utilities passed
// through to step implementations. Like Registry, it is written during
// setup and read-only afterward.
type ToolRegistry struct {
	mutex sync.RWMutex
	tools map[string]Tool
}

// NewToolRegistry returns a tool registry containing the given tools.
func NewToolRegistry(tools ...Tool) *ToolRegistry {
	r := &ToolRegistry{tools: map[string]Tool{}}
	for _, tool := range tools {
		r.tools[tool.Name()] = tool
	}
	return r
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *ToolRegistry) Register(tool Tool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.tools[tool.Name()] = tool
}

// Get looks up a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}
