package services_test

import (
	"context"
	"testing"

	"oszimport/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithBatch(ctx, 3)
	ctx = services.WithComponent(ctx, "batch")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if batch, ok := services.BatchFromContext(ctx); !ok || batch != 3 {
		t.Fatalf("unexpected batch: %v %v", batch, ok)
	}
	if component, ok := services.ComponentFromContext(ctx); !ok || component != "batch" {
		t.Fatalf("unexpected component: %v %v", component, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithBatch(ctx, 0)
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.BatchFromContext(ctx); ok {
		t.Fatal("expected no batch value")
	}
}
