package internal

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "go.eggybyte.com/argconf/configx"

// Metrics records source collection outcomes.
//
// Metrics collected:
//   - config_source_collect_total: collections per source and result
//   - config_source_collect_duration_seconds: collection latency per source
//   - config_keys: number of keys in the merged snapshot
type Metrics struct {
	collects metric.Int64Counter
	duration metric.Float64Histogram
	keys     metric.Int64Gauge
}

// NewMetrics creates the instruments on provider. A nil provider records nothing.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	meter := provider.Meter(meterName)

	collects, err := meter.Int64Counter(
		"config_source_collect_total",
		metric.WithDescription("Number of configuration source collections"),
		metric.WithUnit("{collect}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"config_source_collect_duration_seconds",
		metric.WithDescription("Time spent collecting a configuration source"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	keys, err := meter.Int64Gauge(
		"config_keys",
		metric.WithDescription("Number of keys in the merged configuration"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{collects: collects, duration: duration, keys: keys}, nil
}

// RecordCollect records one collection of source.
func (m *Metrics) RecordCollect(ctx context.Context, source string, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.collects.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("result", result),
	))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("source", source)))
}

// RecordKeys records the size of the merged snapshot.
func (m *Metrics) RecordKeys(ctx context.Context, n int) {
	m.keys.Record(ctx, int64(n))
}
