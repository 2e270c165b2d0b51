package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "deck-server"

// GetTracer returns the tracer for the deck service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// DeckAttributes returns common attributes for deck generation spans.
func DeckAttributes(deckID, model string, slideCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("deck.id", deckID),
		attribute.String("deck.model", model),
		attribute.Int("deck.slide_count", slideCount),
	}
}

// StartGenerationSpan starts a span covering one whole deck generation.
func StartGenerationSpan(ctx context.Context, deckID, model string, slideCount int) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "deck.generate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(DeckAttributes(deckID, model, slideCount)...),
	)
}

// StartExportSpan starts a span covering one export job build.
func StartExportSpan(ctx context.Context, jobID string, slideCount int) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "export.build",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("export.job_id", jobID),
			attribute.Int("export.slide_count", slideCount),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error, kind string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.kind", kind))
}
