package telemetry

import (
	"adminctl/app/config"
	"context"
	"errors"
	"log/slog"

	sentryotel "github.com/getsentry/sentry-go/otel"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log"
	lognoop "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type Telemetry struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	LoggerProvider log.LoggerProvider

	Tracer trace.Tracer
	Meter  metric.Meter

	shutdownFuncs []func(context.Context) error
}

// Init builds the otel providers. With telemetry disabled every provider is
// a no-op, so callers never have to nil-check.
func Init(cfg *config.Config) (*Telemetry, error) {
	if !cfg.Telemetry.Enabled {
		return NewNoop(), nil
	}

	ctx := context.Background()

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.Telemetry.ServiceName),
	)

	traceExporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, oops.Errorf("otlptracehttp.New: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sentryotel.NewSentrySpanProcessor()),
	)

	metricExporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return nil, oops.Errorf("otlpmetrichttp.New: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	logExporter, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, oops.Errorf("otlploghttp.New: %w", err)
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
		sentryotel.NewSentryPropagator(),
	))

	return &Telemetry{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		LoggerProvider: loggerProvider,
		Tracer:         tracerProvider.Tracer(cfg.Telemetry.ServiceName),
		Meter:          meterProvider.Meter(cfg.Telemetry.ServiceName),
		shutdownFuncs: []func(context.Context) error{
			tracerProvider.Shutdown,
			meterProvider.Shutdown,
			loggerProvider.Shutdown,
		},
	}, nil
}

func NewNoop() *Telemetry {
	tracerProvider := tracenoop.NewTracerProvider()
	meterProvider := metricnoop.NewMeterProvider()

	return &Telemetry{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		LoggerProvider: lognoop.NewLoggerProvider(),
		Tracer:         tracerProvider.Tracer("adminctl"),
		Meter:          meterProvider.Meter("adminctl"),
	}
}

func (t *Telemetry) Shutdown(ctx context.Context) {
	var errs []error
	for _, fn := range t.shutdownFuncs {
		errs = append(errs, fn(ctx))
	}

	if err := errors.Join(errs...); err != nil {
		slog.Warn("Failed to shutdown telemetry",
			slog.Any("error", err),
		)
	}
}
