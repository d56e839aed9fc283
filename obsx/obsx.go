// Package obsx provides Prometheus-based metrics for argconf programs.
//
// Overview:
//   - Responsibility: Bootstrap an OpenTelemetry meter provider with Prometheus export
//   - Key Types: Options for configuration, Provider for managing lifecycle
//   - Concurrency Model: Provider is safe for concurrent use
//   - Error Semantics: Coded errors (INVALID_ARGUMENT, UNAVAILABLE, INTERNAL)
//   - Performance Notes: Metrics are gathered on scrape; nothing is pushed
//
// Usage:
//
//	provider, err := obsx.NewProvider(ctx, obsx.Options{ServiceName: "argconf"})
//	mgr, err := configx.NewManager(ctx, configx.Options{
//	  MeterProvider: provider.MeterProvider(),
//	  ...
//	})
//	go provider.Serve(ctx, ":9090", logger)
//	defer provider.Shutdown(context.Background())
package obsx

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/obsx/internal"
)

// Options holds configuration for the metrics provider.
type Options struct {
	ServiceName     string            // Service name resource attribute (required)
	ServiceVersion  string            // Service version resource attribute
	ResourceAttrs   map[string]string // Additional resource attributes
	ShutdownTimeout time.Duration     // Metrics server shutdown timeout (default: 5s)
}

// Provider manages a meter provider with Prometheus export.
// The provider must be shut down when no longer needed.
type Provider struct {
	impl            *internal.Provider
	shutdownTimeout time.Duration
}

// NewProvider creates a new metrics provider with Prometheus export.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	impl, err := internal.NewProvider(ctx, internal.ProviderOptions{
		ServiceName:    opts.ServiceName,
		ServiceVersion: opts.ServiceVersion,
		ResourceAttrs:  opts.ResourceAttrs,
	})
	if err != nil {
		return nil, err
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Provider{impl: impl, shutdownTimeout: timeout}, nil
}

// MeterProvider returns the meter provider to pass to instrumented components.
func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.impl.MeterProvider
}

// Meter returns a named meter for custom instruments.
func (p *Provider) Meter(name string) metric.Meter {
	return p.impl.MeterProvider.Meter(name)
}

// PrometheusHandler returns an HTTP handler exposing every instrument in
// Prometheus text format.
//
// Example:
//
//	mux.Handle("/metrics", provider.PrometheusHandler())
func (p *Provider) PrometheusHandler() http.Handler {
	return p.impl.Handler()
}

// EnableRuntimeMetrics registers Go runtime gauges (goroutines, heap, GC).
func (p *Provider) EnableRuntimeMetrics() error {
	if err := internal.EnableRuntimeMetrics(p.impl.MeterProvider); err != nil {
		return errors.Wrap(errors.CodeInternal, "obsx.EnableRuntimeMetrics", err)
	}
	return nil
}

// Serve listens on addr and serves /metrics and /healthz until ctx is done.
// It blocks; run it in its own goroutine next to the work being measured.
func (p *Provider) Serve(ctx context.Context, addr string, logger log.Logger) error {
	if logger == nil {
		return errors.New(errors.CodeInvalidArgument, "logger is required")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Build(errors.CodeUnavailable).
			WithOp("obsx.Serve").
			WithMsgf("listen on %s", addr).
			WithErr(err).
			Err()
	}
	return p.ServeListener(ctx, ln, logger)
}

// ServeListener is Serve over an existing listener. The listener is closed
// when the server stops.
func (p *Provider) ServeListener(ctx context.Context, ln net.Listener, logger log.Logger) error {
	return internal.Serve(ctx, ln, p.impl.Handler(), logger, p.shutdownTimeout)
}

// Shutdown flushes and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.impl.Shutdown(ctx)
}
