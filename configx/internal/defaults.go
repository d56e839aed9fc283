package internal

import (
	"go.eggybyte.com/argconf/core/value"
)

// DefaultsOrigin labels values supplied by the program itself.
const DefaultsOrigin = "default"

// DefaultsSource serves a fixed set of values, usually the lowest layer.
type DefaultsSource struct {
	values map[string]any
}

// NewDefaultsSource creates a source over values. Nested maps are flattened
// to dotted keys. The map is copied.
func NewDefaultsSource(values map[string]any) *DefaultsSource {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &DefaultsSource{values: copied}
}

// Name returns the origin label.
func (s *DefaultsSource) Name() string {
	return DefaultsOrigin
}

// Collect converts the defaults into typed values.
func (s *DefaultsSource) Collect() (value.Map, error) {
	out := make(value.Map, len(s.values))
	if err := flatten(DefaultsOrigin, "", s.values, out); err != nil {
		return nil, err
	}
	return out, nil
}
