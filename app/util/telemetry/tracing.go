package telemetry

import (
	"adminctl/app/config"
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Tracing struct {
	cfg    *config.Config
	tracer trace.Tracer
}

func NewTracing(cfg *config.Config, tracer trace.Tracer) *Tracing {
	return &Tracing{
		cfg:    cfg,
		tracer: tracer,
	}
}

func (t *Tracing) StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service", service),
			attribute.String("operation", operation),
		),
	)
}

func (t *Tracing) StartClientSpan(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

// Error records err on the span and returns it unchanged.
func (t *Tracing) Error(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}

func (t *Tracing) Success(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
