package auth

import (
	"context"
	"testing"

	"google.golang.org/grpc/metadata"
)

func TestGetUserID(t *testing.T) {
	if got := GetUserID(context.Background()); got != "" {
		t.Fatalf("expected empty id without metadata, got %q", got)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-user-id", "planner-7"))
	if got := GetUserID(ctx); got != "planner-7" {
		t.Fatalf("expected planner-7, got %q", got)
	}
}
