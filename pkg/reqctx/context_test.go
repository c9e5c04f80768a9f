package reqctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRequestMeta(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q", got)
	}
	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "req-1"})
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want req-1", got)
	}
}

func TestIdentity(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("anonymous context reported an identity")
	}
	want := Identity{UserID: uuid.New(), SessionID: uuid.New(), Role: "mechanic"}
	got, ok := IdentityFromContext(WithIdentity(context.Background(), want))
	if !ok || got != want {
		t.Errorf("IdentityFromContext() = %+v, %v", got, ok)
	}
}
