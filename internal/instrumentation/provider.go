package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider owns the meter and tracer providers for the process.
type Provider struct {
	config Config

	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *Metrics
	promHandler    http.Handler
}

// ProviderOption customizes NewProvider.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	readers      []sdkmetric.Reader
	exportWriter io.Writer
}

// WithMetricReader attaches an additional reader, e.g. a ManualReader in tests.
func WithMetricReader(reader sdkmetric.Reader) ProviderOption {
	return func(o *providerOptions) {
		o.readers = append(o.readers, reader)
	}
}

// WithExportWriter sets where stdout exporters write. Defaults to stderr
// so that the stdio transport's stdout stays clean.
func WithExportWriter(w io.Writer) ProviderOption {
	return func(o *providerOptions) {
		o.exportWriter = w
	}
}

// NewProvider builds the OpenTelemetry pipeline described by config. When
// config.Enabled is false the returned provider is inert: Metrics returns
// nil and Shutdown is a no-op.
func NewProvider(ctx context.Context, config Config, opts ...ProviderOption) (*Provider, error) {
	p := &Provider{config: config}
	if !config.Enabled {
		return p, nil
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &providerOptions{exportWriter: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
	)

	metricOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range o.readers {
		metricOpts = append(metricOpts, sdkmetric.WithReader(r))
	}

	reader, handler, err := p.newMetricReader(ctx, o.exportWriter)
	if err != nil {
		return nil, err
	}
	metricOpts = append(metricOpts, sdkmetric.WithReader(reader))
	p.promHandler = handler

	p.meterProvider = sdkmetric.NewMeterProvider(metricOpts...)
	otel.SetMeterProvider(p.meterProvider)

	p.metrics, err = NewMetrics(p.meterProvider.Meter(TracerName), config.DetailedLabels)
	if err != nil {
		return nil, errors.Join(err, p.meterProvider.Shutdown(ctx))
	}

	if config.TracingExporter != TracingExporterNone {
		exporter, err := p.newSpanExporter(ctx, o.exportWriter)
		if err != nil {
			return nil, errors.Join(err, p.meterProvider.Shutdown(ctx))
		}

		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.TraceSamplingRate))),
		)
		otel.SetTracerProvider(p.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	return p, nil
}

func (p *Provider) newMetricReader(ctx context.Context, w io.Writer) (sdkmetric.Reader, http.Handler, error) {
	switch p.config.MetricsExporter {
	case MetricsExporterOTLP:
		var opts []otlpmetrichttp.Option
		if p.config.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(p.config.OTLPEndpoint))
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval)), nil, nil

	case MetricsExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval)), nil, nil

	default:
		registry := promclient.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
		return exporter, handler, nil
	}
}

func (p *Provider) newSpanExporter(ctx context.Context, w io.Writer) (sdktrace.SpanExporter, error) {
	switch p.config.TracingExporter {
	case TracingExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		return exporter, nil

	default:
		var opts []otlptracehttp.Option
		if p.config.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(p.config.OTLPEndpoint))
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		return exporter, nil
	}
}

// Enabled reports whether instrumentation is active.
func (p *Provider) Enabled() bool {
	return p != nil && p.config.Enabled
}

// Metrics returns the metrics recorder, or nil when disabled.
func (p *Provider) Metrics() *Metrics {
	if p == nil {
		return nil
	}
	return p.metrics
}

// PrometheusHandler serves the Prometheus scrape endpoint. It is nil unless
// the prometheus exporter is in use.
func (p *Provider) PrometheusHandler() http.Handler {
	if p == nil {
		return nil
	}
	return p.promHandler
}

// Config returns the configuration the provider was built with.
func (p *Provider) Config() Config {
	if p == nil {
		return Config{}
	}
	return p.config
}

// Shutdown flushes and stops the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
