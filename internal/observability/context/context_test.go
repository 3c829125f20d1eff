package context

import (
	"context"
	"testing"
)

func TestCorrelationFields(t *testing.T) {
	ctx := WithRequestID(context.Background(), " req-1 ")
	ctx = WithOrgID(ctx, "42")

	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected trimmed request id, got %q", got)
	}
	if got := OrgIDFromContext(ctx); got != "42" {
		t.Fatalf("expected org id 42, got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}
