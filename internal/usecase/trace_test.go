package usecase

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestEndSpan_RecordsFailures(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := tracer.Start(context.Background(), "usecase.MatchService.ListResults")
	endSpan(span, ErrInvalidInput)

	_, span = tracer.Start(context.Background(), "usecase.TeamService.ListTeams")
	endSpan(span, nil)

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected two ended spans, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Error || len(ended[0].Events()) != 1 {
		t.Fatalf("expected failed span to carry error status and event, got %v", ended[0].Status())
	}
	if ended[1].Status().Code == codes.Error || len(ended[1].Events()) != 0 {
		t.Fatalf("expected successful span to stay unset, got %v", ended[1].Status())
	}
}

func TestStartUsecaseSpan_WithoutParentIsNoop(t *testing.T) {
	ctx := context.Background()
	got, span := startUsecaseSpan(ctx, "usecase.StandingService.GetStandings")
	endSpan(span, errors.New("ignored"))

	if got != ctx || span.SpanContext().IsValid() {
		t.Fatalf("expected no span to be started without a parent")
	}
}
