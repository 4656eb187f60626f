package graphflow

// State is the mutable value threaded through a run. Data holds the
// workflow payload that steps read and write; Metadata holds auxiliary
// values that the engine never interprets.
//
// Ownership transfers to a step for the duration of its invocation and
// returns to the engine afterward. There are never two concurrent holders
// within a run, so State itself carries no locking.
type State struct {
	Data     map[string]any `json:"data" yaml:"data"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewState returns an empty state with both maps initialized.
func NewState() *State {
	return &State{
		Data:     map[string]any{},
		Metadata: map[string]any{},
	}
}

// Copy returns a shallow copy of the state. Map containers are fresh;
// values are shared.
func (s *State) Copy() *State {
	if s == nil {
		return NewState()
	}
	return &State{
		Data:     copyMap(s.Data),
		Metadata: copyMap(s.Metadata),
	}
}

// copyMap creates a shallow copy of a map
func copyMap(m map[string]any) map[string]any {
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
