// Package tracing installs the global OpenTelemetry tracer provider and
// offers small helpers to start and finish spans.
package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/frahmantamala/workforce-portal"

var (
	providerOnce sync.Once
	provider     *sdktrace.TracerProvider
	providerErr  error
)

// Init exports spans as JSON to w (stdout when nil). Only the first call has
// an effect.
func Init(serviceName string, samplingRate float64, w io.Writer) (func(context.Context) error, error) {
	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	return InitWithExporter(serviceName, samplingRate, exporter)
}

func InitWithExporter(serviceName string, samplingRate float64, exporter sdktrace.SpanExporter) (func(context.Context) error, error) {
	providerOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(attribute.String("service.name", serviceName)),
		)
		if err != nil {
			providerErr = err
			return
		}

		provider = sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(samplingRate))),
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(provider)
	})
	if providerErr != nil {
		return nil, providerErr
	}
	return provider.Shutdown, nil
}

// StartSpan starts an internal span. Without Init the global no-op provider is used.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
