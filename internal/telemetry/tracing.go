// Package telemetry is VajraEdge's ambient observability surface: an
// OpenTelemetry tracer provider and a Prometheus handler for
// process-level gauges. No other package imports it: nothing in the
// repository starts spans, registers the gauges, or mounts the handler.
// Grounded on the teacher's tracer-provider-from-config-line
// precedent (internal/lib/trace/otel_test.go — API-only, no non-test
// source retrieved), reduced to a single always-http exporter
// configuration: the teacher's otel-line grpc-proto variant is dropped
// along with gRPC generally (see DESIGN.md).
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerProviderConfig is the always-http-exporter subset of the
// teacher's otel-line configuration: an endpoint and whether to dial it
// over plaintext.
type TracerProviderConfig struct {
	Endpoint    string
	URLPath     string
	Insecure    bool
	ServiceName string
}

// NewTracerProvider builds and registers a global sdktrace.TracerProvider
// exporting spans via OTLP/HTTP to cfg.Endpoint. Callers shut it down
// with the returned func on process exit to flush pending spans.
func NewTracerProvider(ctx context.Context, cfg TracerProviderConfig) (shutdown func(context.Context) error, err error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.URLPath != "" {
		opts = append(opts, otlptracehttp.WithURLPath(cfg.URLPath))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build otlp/http exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "vajraedge"
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the named tracer off the currently registered global
// provider, for code that only needs to start spans, not configure the
// provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
