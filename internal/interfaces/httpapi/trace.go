package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("group-stage/internal/interfaces/httpapi")

// startSpan opens a child span for handler entry points. Helpers and
// middleware reuse the current span, and nothing is started without a
// sampled parent from the otelhttp middleware.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan{parent}
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

// markSpanError flags the active span for server-side failures; client errors
// are recorded as an attribute only.
func markSpanError(ctx context.Context, status int, reason string, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Int("http.response.status_code", status),
		attribute.String("error.reason", reason),
	)
	if status >= 500 {
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
	}
}

// noopSpan lets callers defer End on a span they did not start.
type noopSpan struct {
	trace.Span
}

func (noopSpan) End(...trace.SpanEndOption) {}
