// Package internal provides internal implementation details for configx.
package internal

import (
	"context"

	"go.eggybyte.com/argconf/core/value"
)

// Source produces a flat map of typed values. Keys use dots for nesting.
// Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the source in logs, metrics and errors.
	Name() string

	// Collect returns a fresh snapshot of the source.
	Collect() (value.Map, error)
}

// Watcher is implemented by sources that can signal changes.
// The channel is closed when ctx is cancelled.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// BindConfig holds bind configuration options.
type BindConfig struct {
	OnUpdate func()
}

// notify performs a non-blocking send so a slow consumer coalesces signals.
func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
