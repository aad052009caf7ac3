package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"koneko/internal/pipeline"
)

func TestWatchDirReportsExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "000_a.jpg"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "007_unwanted.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out := make(chan pipeline.Completion, 4)
	done := make(chan error, 1)
	go func() { done <- pipeline.WatchDir(ctx, dir, []int{0, 1}, out, nil) }()

	first := <-out
	if first.Ordinal != 0 {
		t.Fatalf("first completion = %+v", first)
	}

	tmp := filepath.Join(dir, ".part-001")
	if err := os.WriteFile(tmp, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, "001_b.jpg")); err != nil {
		t.Fatal(err)
	}

	if err := <-done; err != nil {
		t.Fatalf("WatchDir: %v", err)
	}
	var ordinals []int
	for c := range out {
		ordinals = append(ordinals, c.Ordinal)
	}
	if !slices.Equal(ordinals, []int{1}) {
		t.Fatalf("remaining completions %v, want [1]", ordinals)
	}
}

func TestWatchDirCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan pipeline.Completion, 1)
	done := make(chan error, 1)
	go func() { done <- pipeline.WatchDir(ctx, t.TempDir(), []int{0}, out, nil) }()
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected cancellation error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WatchDir ignored cancellation")
	}
	if _, ok := <-out; ok {
		t.Fatal("expected out closed")
	}
}
