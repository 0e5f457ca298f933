// Package telemetry wires OpenTelemetry spans around the request-handler
// retry loop (spec §4.7, SPEC_FULL.md's telemetry section): one span per
// inbound request, with a span event recorded per provider/account
// attempt.
//
// Grounded directly on the teacher's pkg/telemetry (tracer.go's
// GetTracer noop-fallback, span.go's RecordSpan/RecordErrorOnSpan/
// GetBaseAttributes), generalized from the teacher's per-generation-call
// span to this gateway's per-request-attempt-loop span.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName identifies this gateway's tracer in exported spans.
const TracerName = "llmux-gateway"

// Settings controls whether telemetry is active, mirroring the teacher's
// pkg/telemetry.Settings shape (disabled by default).
type Settings struct {
	IsEnabled bool
	Tracer    trace.Tracer
}

// GetTracer returns settings.Tracer if set, the global tracer if enabled,
// or a no-op tracer when disabled (teacher's pkg/telemetry.GetTracer).
func GetTracer(settings *Settings) trace.Tracer {
	if settings == nil || !settings.IsEnabled {
		return noop.NewTracerProvider().Tracer(TracerName)
	}
	if settings.Tracer != nil {
		return settings.Tracer
	}
	return otel.Tracer(TracerName)
}

// RequestAttributes returns the base span attributes for an inbound
// request (teacher's GetBaseAttributes, adapted to this gateway's
// provider/model/format fields instead of the teacher's generation-call
// fields).
func RequestAttributes(format, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("llmux.request.format", format),
		attribute.String("llmux.request.model", model),
	}
}

// RecordAttempt adds a span event for one provider/account attempt in
// the retry loop (spec §4.7's attempt sequence), mirroring the teacher's
// per-call span pattern but as an event on the request's outer span
// rather than a child span per attempt, since attempts share one logical
// request and a flat event list reads more clearly than a deep span tree.
func RecordAttempt(span trace.Span, provider string, account int, statusCode int, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("llmux.attempt.provider", provider),
		attribute.Int("llmux.attempt.account", account),
		attribute.Int("llmux.attempt.status_code", statusCode),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("llmux.attempt.error", err.Error()))
	}
	span.AddEvent("attempt", trace.WithAttributes(attrs...))
}

// RecordError records err on span and sets its status to error (teacher's
// RecordErrorOnSpan).
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// StartRequest starts the outer span for one inbound gateway request.
func StartRequest(ctx context.Context, tracer trace.Tracer, format, model string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "llmux.request",
		trace.WithAttributes(RequestAttributes(format, model)...),
	)
}
