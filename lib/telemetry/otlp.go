package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	exporterDialTimeout   = 3 * time.Second
	defaultMetricInterval = 5 * time.Second
)

// Exporter points one signal at an OTLP collector. Grpc wins when both
// endpoints are set, and neither set means the signal is not exported.
type Exporter struct {
	Grpc    string            `json:"grpc"`
	Http    string            `json:"http"`
	Headers map[string]string `json:"headers"`
	// IntervalSeconds is the metric push period, traces ignore it.
	IntervalSeconds int `json:"interval_seconds"`
}

func (e Exporter) enabled() bool {
	return e.Grpc != "" || e.Http != ""
}

func (e Exporter) interval() time.Duration {
	if e.IntervalSeconds <= 0 {
		return defaultMetricInterval
	}
	return time.Duration(e.IntervalSeconds) * time.Second
}

// Config is the shape of telemetry.json5.
type Config struct {
	Traces  Exporter `json:"traces"`
	Metrics Exporter `json:"metrics"`
	// PerfStats turns on process cpu/memory gauges.
	PerfStats bool `json:"perf_stats"`
}

type dialer[E any] func(ctx context.Context, endpoint string, headers map[string]string) (E, error)

// dialExporter creates the exporter for one signal with whichever protocol
// the config names.
func dialExporter[E any](ctx context.Context, signal string, e Exporter, grpc, http dialer[E]) (E, error) {
	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	protocol, endpoint, dial := "grpc", e.Grpc, grpc
	if endpoint == "" {
		protocol, endpoint, dial = "http", e.Http, http
	}
	slog.Info(
		"otlp exporter",
		"signal", signal,
		"protocol", protocol,
		"endpoint", endpoint,
		"headers", len(e.Headers),
	)
	return dial(ctx, endpoint, e.Headers)
}

func spansOverGrpc(ctx context.Context, endpoint string, headers map[string]string) (trace.SpanExporter, error) {
	return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint), otlptracegrpc.WithHeaders(headers))
}

func spansOverHttp(ctx context.Context, endpoint string, headers map[string]string) (trace.SpanExporter, error) {
	return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint), otlptracehttp.WithHeaders(headers))
}

func metricsOverGrpc(ctx context.Context, endpoint string, headers map[string]string) (metric.Exporter, error) {
	return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(endpoint), otlpmetricgrpc.WithHeaders(headers))
}

func metricsOverHttp(ctx context.Context, endpoint string, headers map[string]string) (metric.Exporter, error) {
	return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpoint), otlpmetrichttp.WithHeaders(headers))
}

func serviceResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)),
	)
}

func tracerProviderFor(ctx context.Context, r *resource.Resource, e Exporter) (*trace.TracerProvider, error) {
	opts := []trace.TracerProviderOption{trace.WithResource(r)}
	if e.enabled() {
		exporter, err := dialExporter(ctx, "traces", e, spansOverGrpc, spansOverHttp)
		if err != nil {
			return nil, err
		}
		opts = append(opts, trace.WithBatcher(exporter))
	}
	return trace.NewTracerProvider(opts...), nil
}

func meterProviderFor(ctx context.Context, r *resource.Resource, e Exporter) (*metric.MeterProvider, error) {
	opts := []metric.Option{metric.WithResource(r)}
	if e.enabled() {
		exporter, err := dialExporter(ctx, "metrics", e, metricsOverGrpc, metricsOverHttp)
		if err != nil {
			return nil, err
		}
		reader := metric.NewPeriodicReader(exporter, metric.WithInterval(e.interval()))
		opts = append(opts, metric.WithReader(reader))
	}
	return metric.NewMeterProvider(opts...), nil
}
