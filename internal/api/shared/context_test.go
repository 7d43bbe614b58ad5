package shared

import (
	"context"
	"testing"
)

func TestSetTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	if traceID == "" {
		t.Fatal("expected a trace ID")
	}
	if len(traceID) != TraceIDLength*2 {
		t.Errorf("trace ID length = %d, want %d hex chars", len(traceID), TraceIDLength*2)
	}

	// Each call produces a distinct ID.
	other := GetTraceID(SetTraceID(context.Background()))
	if other == traceID {
		t.Error("trace IDs should not repeat")
	}
}

func TestGetTraceIDWithoutValue(t *testing.T) {
	t.Parallel()

	if got := GetTraceID(context.Background()); got != "" {
		t.Errorf("expected empty trace ID, got %q", got)
	}
}
