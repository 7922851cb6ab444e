package telemetry

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/williampepple1/partsearch/internal/config"
)

// Telemetry holds the installed providers so they can be flushed on exit
type Telemetry struct {
	TracerProvider *trace.TracerProvider
}

// Setup installs a global tracer provider exporting over OTLP. When
// telemetry is disabled nothing is installed and spans stay no-ops.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (*Telemetry, error) {
	if !cfg.Enabled {
		return &Telemetry{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	r, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, eris.Wrap(err, "telemetry: resource")
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	)
	otel.SetTracerProvider(tp)

	return &Telemetry{TracerProvider: tp}, nil
}

// Shutdown flushes pending spans and stops the exporter
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.TracerProvider == nil {
		return nil
	}
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		return eris.Wrap(err, "telemetry: shutdown")
	}
	return nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newExporter(ctx context.Context, cfg config.TelemetryConfig) (trace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	switch {
	case cfg.GRPCEndpoint != "":
		zap.L().Info("telemetry: trace export initialized",
			zap.String("type", "grpc"),
			zap.String("endpoint", cfg.GRPCEndpoint),
		)
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(cfg.GRPCEndpoint),
			otlptracegrpc.WithHeaders(cfg.Headers),
		)
		if err != nil {
			return nil, eris.Wrap(err, "telemetry: grpc exporter")
		}
		return exporter, nil

	case cfg.HTTPEndpoint != "":
		zap.L().Info("telemetry: trace export initialized",
			zap.String("type", "http"),
			zap.String("endpoint", cfg.HTTPEndpoint),
		)
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(cfg.HTTPEndpoint),
			otlptracehttp.WithHeaders(cfg.Headers),
		)
		if err != nil {
			return nil, eris.Wrap(err, "telemetry: http exporter")
		}
		return exporter, nil

	default:
		return nil, eris.New("telemetry: enabled without an OTLP endpoint")
	}
}
