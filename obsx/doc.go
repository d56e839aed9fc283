// Package obsx provides Prometheus-based metrics for argconf programs.
//
// # Overview
//
// obsx constructs an OpenTelemetry meter provider whose only reader is a
// Prometheus registry. The configuration manager in configx records source
// collection counts, durations and the merged key count through any
// metric.MeterProvider; obsx supplies one that can be scraped.
//
// # Features
//
//   - Meter provider with Prometheus export only (no remote push)
//   - Runtime metrics (goroutines, heap, GC cycles)
//   - A small /metrics and /healthz server bound to a context
//   - Graceful shutdown with bounded timeouts
//
// # Usage
//
//	provider, err := obsx.NewProvider(ctx, obsx.Options{
//		ServiceName:    "argconf",
//		ServiceVersion: "v0.1.0",
//	})
//	if err != nil { return err }
//	defer provider.Shutdown(context.Background())
//
//	_ = provider.EnableRuntimeMetrics()
//	go provider.Serve(ctx, ":9090", logger)
//
// # Layer
//
// obsx depends on core only. configx accepts its MeterProvider but does not
// import it.
//
// # Stability
//
// Experimental.
package obsx
