package services_test

import (
	"context"
	"testing"

	"koneko/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithCollection(ctx, "gallery")
	ctx = services.WithPage(ctx, 0)
	ctx = services.WithStage(ctx, "sequencer")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if kind, ok := services.CollectionFromContext(ctx); !ok || kind != "gallery" {
		t.Fatalf("unexpected collection: %v %v", kind, ok)
	}
	if page, ok := services.PageFromContext(ctx); !ok || page != 0 {
		t.Fatalf("unexpected page: %v %v", page, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "sequencer" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithSessionID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected no session value")
	}
	if _, ok := services.PageFromContext(ctx); ok {
		t.Fatal("expected no page value")
	}
}
