package orgcontext

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
)

func TestOrgIDRoundTrip(t *testing.T) {
	ctx := WithOrgID(context.Background(), snowflake.ID(42))
	orgID, ok := OrgIDFromContext(ctx)
	if !ok || orgID != 42 {
		t.Fatalf("expected org 42, got %d (ok=%v)", orgID, ok)
	}
}

func TestOrgIDMissing(t *testing.T) {
	if _, ok := OrgIDFromContext(context.Background()); ok {
		t.Fatalf("expected no org id")
	}
	if _, ok := OrgIDFromContext(WithOrgID(context.Background(), 0)); ok {
		t.Fatalf("expected zero org id to be rejected")
	}
}
