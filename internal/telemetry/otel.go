package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Endpoint is an OTLP collector, grpc wins when both are given.
type Endpoint struct {
	Grpc    string            `json:"grpc_endpoint"`
	Http    string            `json:"http_endpoint"`
	Headers map[string]string `json:"headers"`
}

func (e Endpoint) protocol() string {
	switch {
	case e.Grpc != "":
		return "grpc"
	case e.Http != "":
		return "http"
	}
	return ""
}

type OtlpConfig struct {
	Traces  Endpoint `json:"traces"`
	Metrics Endpoint `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

// Otel holds the providers installed as otel globals, a provider is nil when its endpoint was left
// empty.
type Otel struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// Shutdown flushes whatever is still buffered.
func (o Otel) Shutdown(ctx context.Context) error {
	var errs []error
	if o.TracerProvider != nil {
		errs = append(errs, o.TracerProvider.Shutdown(ctx))
	}
	if o.MeterProvider != nil {
		errs = append(errs, o.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func traceExporter(ctx context.Context, e Endpoint) (trace.SpanExporter, error) {
	if e.protocol() == "grpc" {
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(e.Grpc), otlptracegrpc.WithHeaders(e.Headers))
	}
	return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(e.Http), otlptracehttp.WithHeaders(e.Headers))
}

func metricExporter(ctx context.Context, e Endpoint) (metric.Exporter, error) {
	if e.protocol() == "grpc" {
		return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(e.Grpc), otlpmetricgrpc.WithHeaders(e.Headers))
	}
	return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(e.Http), otlpmetrichttp.WithHeaders(e.Headers))
}

// SetupOtel installs the configured exporters as otel globals along with w3c trace context
// propagation. Without any endpoint the no-op providers stay in place and spans cost nothing.
func SetupOtel(ctx context.Context, serviceName string, config Config) (Otel, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return Otel{}, err
	}

	var out Otel
	if traces := config.Otlp.Traces; traces.protocol() != "" {
		exporter, err := traceExporter(ctx, traces)
		if err != nil {
			return Otel{}, err
		}
		out.TracerProvider = trace.NewTracerProvider(trace.WithBatcher(exporter), trace.WithResource(res))
		otel.SetTracerProvider(out.TracerProvider)
		slog.Info("exporting traces", "protocol", traces.protocol())
	}
	if metrics := config.Otlp.Metrics; metrics.protocol() != "" {
		exporter, err := metricExporter(ctx, metrics)
		if err != nil {
			return out, errors.Join(err, out.Shutdown(ctx))
		}
		out.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(30*time.Second))),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(out.MeterProvider)
		slog.Info("exporting metrics", "protocol", metrics.protocol())
	}
	return out, nil
}
