// Package telemetry wires OpenTelemetry tracing around container
// operations. Export goes over OTLP gRPC; tracing is off unless
// enabled through configuration, in which case the provider installs
// itself globally and spans flow from the package helpers.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tabkit/tabkit/pkg/errors"
)

// tracerName scopes spans started through the package helpers.
const tracerName = "github.com/tabkit/tabkit"

// Config controls the OTLP gRPC exporter.
type Config struct {
	// Enabled gates the whole provider; when false Init is a no-op.
	Enabled bool

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string

	// ServiceName identifies this process in traces.
	ServiceName string

	// ServiceVersion tags spans with the build version.
	ServiceVersion string

	// Environment is the deployment environment.
	Environment string

	// Insecure disables TLS on the gRPC connection.
	Insecure bool

	// Headers are sent with each export request.
	Headers map[string]string

	// Batch tuning for the span processor.
	BatchTimeout  time.Duration
	MaxBatchSize  int
	MaxQueueSize  int
	ExportTimeout time.Duration

	// SamplingRatio is the fraction of traces kept, 0 through 1.
	SamplingRatio float64
}

// DefaultConfig returns settings for a local collector.
func DefaultConfig(serviceName, version string) Config {
	return Config{
		Endpoint:       "localhost:4317",
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    "development",
		Insecure:       true,
		BatchTimeout:   5 * time.Second,
		MaxBatchSize:   512,
		MaxQueueSize:   2048,
		ExportTimeout:  30 * time.Second,
		SamplingRatio:  1.0,
	}
}

// Provider owns the tracer provider lifecycle.
type Provider struct {
	mu sync.Mutex

	cfg            Config
	tracerProvider *sdktrace.TracerProvider
	shutdown       func(context.Context) error
	initialized    bool
}

// NewProvider creates a provider; call Init to connect.
func NewProvider(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

// Init sets up the exporter and installs the global tracer provider.
// The returned shutdown flushes pending spans; it is never nil. When
// the config is disabled nothing is installed and shutdown is a no-op.
func (p *Provider) Init(ctx context.Context) (func(context.Context) error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return p.shutdown, nil
	}
	if !p.cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	dialOpts := []grpc.DialOption{}
	if p.cfg.Insecure {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(p.cfg.Endpoint),
		otlptracegrpc.WithDialOption(dialOpts...),
		otlptracegrpc.WithTimeout(p.cfg.ExportTimeout),
	}
	if p.cfg.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	if len(p.cfg.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(p.cfg.Headers))
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "create otlp exporter")
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(p.cfg.ServiceName),
			semconv.ServiceVersion(p.cfg.ServiceVersion),
			semconv.DeploymentEnvironment(p.cfg.Environment),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "build trace resource")
	}

	var sampler sdktrace.Sampler
	switch {
	case p.cfg.SamplingRatio >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case p.cfg.SamplingRatio <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(p.cfg.SamplingRatio)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(p.cfg.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(p.cfg.MaxBatchSize),
			sdktrace.WithMaxQueueSize(p.cfg.MaxQueueSize),
			sdktrace.WithExportTimeout(p.cfg.ExportTimeout),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.shutdown = func(ctx context.Context) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.initialized {
			return nil
		}
		p.initialized = false
		return p.tracerProvider.Shutdown(ctx)
	}
	p.initialized = true
	return p.shutdown, nil
}

// IsInitialized reports whether Init installed a provider.
func (p *Provider) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// --- Span helpers ---

// Start opens a span on the global tracer. Without an installed
// provider the span is a no-op, so call sites need no enabled check.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// End closes the span, recording err as its status when non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// AddEvent attaches an event to the span in ctx.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// SetAttributes sets attributes on the span in ctx.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// RecordError records an error on the span in ctx without ending it.
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	trace.SpanFromContext(ctx).RecordError(err)
}
