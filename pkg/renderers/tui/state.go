package tui

import "slices"

// State tracks collected values and server-provided errors keyed by field id.
// Field ids are used verbatim; they may contain dots and punctuation.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	return &State{
		values: cloneValues(prefill),
		errors: cloneErrors(errs),
	}
}

// Values returns the current value map (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to a field.
func (s *State) ErrorsFor(id string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[id]
}

// Value returns the value stored for a field.
func (s *State) Value(id string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[id]
	return value, ok
}

// Set stores a value for a field and clears its errors.
func (s *State) Set(id string, value any) {
	if s == nil {
		return
	}
	s.values[id] = value
	delete(s.errors, id)
}

// Unset removes a field's value.
func (s *State) Unset(id string) {
	if s == nil {
		return
	}
	delete(s.values, id)
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		switch typed := value.(type) {
		case []string:
			out[key] = slices.Clone(typed)
		case []any:
			out[key] = slices.Clone(typed)
		default:
			out[key] = value
		}
	}
	return out
}

func cloneErrors(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for key, messages := range src {
		out[key] = slices.Clone(messages)
	}
	return out
}
