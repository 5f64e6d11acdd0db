package rlcscope

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is used for every span rlcscope creates
	TracerName  = "github.com/maroda/rlcscope"
	ServiceName = "rlcscope"
)

// InitOTel selects an exporter by mode:
// "hny" for Honeycomb, "grf" for a plain OTLP/HTTP collector (Grafana),
// anything else leaves the global no-op provider in place.
// The returned func flushes and shuts the provider down.
func InitOTel(mode string) (func(), error) {
	switch mode {
	case "hny":
		return InitOTelHNY()
	case "grf":
		tp, err := InitOTelGRF()
		if err != nil {
			return nil, err
		}
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("OTel shutdown failed", slog.Any("Error", err))
			}
		}, nil
	default:
		return func() {}, nil
	}
}

// InitOTelHNY hands exporter setup to the Honeycomb distro,
// which reads its endpoint and key from the OTEL_* / HONEYCOMB_* environment
func InitOTelHNY() (func(), error) {
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(ServiceName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure OpenTelemetry: %w", err)
	}
	return func() { otelShutdown() }, nil
}

// InitOTelGRF exports OTLP/HTTP to a collector (Grafana Alloy, Tempo),
// propagating trace context and baggage
func InitOTelGRF() (*sdktrace.TracerProvider, error) {
	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient())
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	// a quarter of root traces, children follow their parent
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}

// Tracer returns the rlcscope tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
