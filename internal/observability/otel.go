// Package observability installs the process-wide OpenTelemetry tracer
// provider. Spans are exported over OTLP/gRPC; when tracing is disabled the
// global no-op provider stays in place.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/go-hydration-backend/internal/config"
)

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Replaced in tests.
var (
	dialExporter = func(ctx context.Context, opts ...otlptracegrpc.Option) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	}
	buildResource = func(ctx context.Context, attrs ...attribute.KeyValue) (*resource.Resource, error) {
		return resource.New(ctx,
			resource.WithAttributes(attrs...),
			resource.WithHost(),
			resource.WithProcessRuntimeName(),
		)
	}
)

// Option adds resource attributes to the exported service identity.
type Option func(*setup)

type setup struct {
	attrs []attribute.KeyValue
}

// WithEnvironment tags spans with deployment.environment (e.g. the gin mode).
func WithEnvironment(env string) Option {
	return func(s *setup) {
		if env != "" {
			s.attrs = append(s.attrs, semconv.DeploymentEnvironment(env))
		}
	}
}

// WithAttributes appends arbitrary resource attributes.
func WithAttributes(kv ...attribute.KeyValue) Option {
	return func(s *setup) { s.attrs = append(s.attrs, kv...) }
}

// SetupOTel configures tracing from cfg and returns the provider's shutdown.
// Globals are only replaced once exporter and resource were both built.
func SetupOTel(ctx context.Context, cfg config.OTELConfig, version string, opts ...Option) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	s := setup{attrs: []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
	}}
	for _, o := range opts {
		o(&s)
	}

	exp, err := dialExporter(ctx, exporterOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	res, err := buildResource(ctx, s.attrs...)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func exporterOptions(cfg config.OTELConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		return append(opts, otlptracegrpc.WithInsecure())
	}
	return append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
}

// sampler honours the parent decision and samples new roots at ratio.
// Ratios at or above 1 always sample; at or below 0 never.
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}
