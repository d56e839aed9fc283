package internal

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel/metric"
)

// EnableRuntimeMetrics registers observable gauges for goroutines, heap and
// GC cycles. Values are read on every collection.
func EnableRuntimeMetrics(provider metric.MeterProvider) error {
	meter := provider.Meter("go.eggybyte.com/argconf/obsx/runtime")

	goroutines, err := meter.Int64ObservableGauge(
		"process_runtime_go_goroutines",
		metric.WithDescription("Number of goroutines that currently exist"),
	)
	if err != nil {
		return err
	}

	heapBytes, err := meter.Int64ObservableGauge(
		"process_runtime_go_memory_heap_bytes",
		metric.WithDescription("Heap memory in bytes"),
	)
	if err != nil {
		return err
	}

	gcCount, err := meter.Int64ObservableCounter(
		"process_runtime_go_gc_count",
		metric.WithDescription("Total number of GC cycles completed"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			observer.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
			observer.ObserveInt64(heapBytes, int64(m.HeapAlloc))
			observer.ObserveInt64(gcCount, int64(m.NumGC))
			return nil
		},
		goroutines,
		heapBytes,
		gcCount,
	)
	return err
}
