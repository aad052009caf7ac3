package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "2232374", "0", "000_a.jpg")

	written, err := WriteAtomic(dst, strings.NewReader("image bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if written != int64(len("image bytes")) {
		t.Fatalf("written = %d", written)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "image bytes" {
		t.Fatalf("content mismatch: got %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteAtomic_FailedReadLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "000_a.jpg")
	if _, err := WriteAtomic(dst, failingReader{}); err == nil {
		t.Fatal("expected read error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %v", entries)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "Downloads", "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "nonexistent")
	dst := filepath.Join(dir, "dst.bin")

	err := CopyFileVerified(src, dst)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a", "x"), make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a", "b", "y"), make([]byte, 5), 0o644); err != nil {
		t.Fatal(err)
	}
	size, files, err := DirSize(dir)
	if err != nil {
		t.Fatal(err)
	}
	if size != 15 || files != 2 {
		t.Fatalf("DirSize = %d bytes, %d files", size, files)
	}

	size, files, err = DirSize(filepath.Join(dir, "missing"))
	if err != nil || size != 0 || files != 0 {
		t.Fatalf("DirSize on missing root = %d, %d, %v", size, files, err)
	}
}
