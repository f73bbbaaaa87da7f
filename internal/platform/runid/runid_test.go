package runid

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()
	if a == b {
		t.Fatalf("New() returned duplicate ids: %q", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("uuid.Parse(%q) err=%v", a, err)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	if got := FromContext(ctx); got != "run-1" {
		t.Fatalf("FromContext()=%q, want run-1", got)
	}
	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("FromContext()=%q, want empty", got)
	}
}
