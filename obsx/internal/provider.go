// Package internal provides internal implementation for the obsx package.
package internal

import (
	"context"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"go.eggybyte.com/argconf/core/errors"
)

// ProviderOptions holds configuration for the metrics provider.
type ProviderOptions struct {
	ServiceName    string
	ServiceVersion string
	ResourceAttrs  map[string]string
}

// Provider owns a meter provider whose only reader is a Prometheus registry.
type Provider struct {
	MeterProvider *metric.MeterProvider
	registry      *promclient.Registry
}

// NewProvider creates a metrics provider with Prometheus export. The
// provider is not installed globally; callers hand MeterProvider to the
// components they want measured.
func NewProvider(ctx context.Context, opts ProviderOptions) (*Provider, error) {
	if opts.ServiceName == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "service name is required")
	}

	res, err := createResource(ctx, opts)
	if err != nil {
		return nil, err
	}

	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithoutUnits(),
		prometheus.WithoutScopeInfo(),
		prometheus.WithoutCounterSuffixes(),
	)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "obsx.NewProvider", err)
	}

	return &Provider{
		MeterProvider: metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(exporter),
		),
		registry: registry,
	}, nil
}

func createResource(ctx context.Context, opts ProviderOptions) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "obsx.resource", err)
	}

	if len(opts.ResourceAttrs) > 0 {
		attrs := make([]attribute.KeyValue, 0, len(opts.ResourceAttrs))
		for k, v := range opts.ResourceAttrs {
			attrs = append(attrs, attribute.String(k, v))
		}
		res, err = resource.Merge(res, resource.NewWithAttributes(semconv.SchemaURL, attrs...))
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, "obsx.resource", err)
		}
	}
	return res, nil
}

// Handler serves the registry in Prometheus text or OpenMetrics format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Shutdown flushes and stops the meter provider, waiting at most 5s.
func (p *Provider) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.MeterProvider.Shutdown(ctx); err != nil {
		return errors.Wrap(errors.CodeInternal, "obsx.Shutdown", err)
	}
	return nil
}
