package trace

import (
	"context"
	"testing"
)

func TestDisabledTracingIsNoop(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "false")
	if err := Init("test-service", "0.0.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if Enabled() {
		t.Fatal("tracing must be off by default")
	}

	ctx := context.Background()
	spanCtx, span := StartSpan(ctx, "noop-op")
	if spanCtx != ctx {
		t.Fatal("disabled StartSpan must return the context unchanged")
	}
	span.End() // must not panic

	if _, _, ok := GetTraceFields(ctx); ok {
		t.Fatal("disabled tracer must yield no trace fields")
	}

	if err := Shutdown(ctx); err != nil {
		t.Fatalf("disabled shutdown must be a no-op: %v", err)
	}
}
