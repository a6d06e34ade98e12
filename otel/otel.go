// Package otel sets up the OpenTelemetry tracing of a process publishing
// through an observer.Registry and reports listener failures to it.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.23.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
)

var _ trace.TracerProvider = (*TelemetryProvider)(nil)

// TelemetryProvider wraps an SDK tracer provider exporting over OTLP gRPC.
type TelemetryProvider struct {
	embedded.TracerProvider

	tracerProvider *sdktrace.TracerProvider
}

// BaseAttributes returns the resource attributes identifying a service.
func BaseAttributes(serviceName, serviceNamespace, version string) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceNamespace(serviceNamespace),
		semconv.ServiceVersion(version),
	}
}

// Init creates a TelemetryProvider exporting to otelCollectorEndpoint and
// installs it as the global tracer provider, which registries created
// without observer.WithTracerProvider use.
func Init(
	ctx context.Context,
	otelCollectorEndpoint string,
	attributes ...attribute.KeyValue,
) (*TelemetryProvider, error) {
	traceExporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(otelCollectorEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			attributes...,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	const alwaysSampleRatio = 1

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(
			sdktrace.ParentBased(
				sdktrace.TraceIDRatioBased(alwaysSampleRatio),
			),
		),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)

	tp := &TelemetryProvider{
		tracerProvider: tracerProvider,
	}

	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{},
		),
	)

	return tp, nil
}

// Tracer returns a named tracer.
func (t *TelemetryProvider) Tracer(name string, options ...trace.TracerOption) trace.Tracer {
	return t.tracerProvider.Tracer(name, options...)
}

// Close flushes the pending spans and shuts the exporter down.
func (t *TelemetryProvider) Close() error {
	const timeout = 10 * time.Second

	timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := t.tracerProvider.Shutdown(timeoutCtx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}

	return nil
}
