package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestGetTracer_DisabledReturnsNoop(t *testing.T) {
	tracer := GetTracer(nil)
	_, span := tracer.Start(context.Background(), "op")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Error("expected noop span to be invalid")
	}
}

func TestStartRequestAndRecordAttempt(t *testing.T) {
	tracer := GetTracer(&Settings{IsEnabled: false})
	ctx, span := StartRequest(context.Background(), tracer, "openai_chat", "gpt-5")
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	RecordAttempt(span, "openai_chat", 0, 429, errors.New("rate limited"))
	RecordAttempt(span, "anthropic", 1, 200, nil)
	span.End()
}

func TestRecordError_NilIsNoop(t *testing.T) {
	tracer := GetTracer(nil)
	_, span := tracer.Start(context.Background(), "op")
	defer span.End()
	RecordError(span, nil)
}
