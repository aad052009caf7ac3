package staleness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
)

// Checker reports which expected files are missing from a directory and
// records files as they complete.
type Checker interface {
	Missing(ctx context.Context, dir string, expected []string) ([]string, error)
	Record(ctx context.Context, dir, name string) error
}

// Entries that live in download directories but are never downloads.
const (
	MarkerFile = ".koneko"
	HistoryDir = "history"
)

// DirWalk compares expected names against the directory listing.
type DirWalk struct{}

var _ Checker = DirWalk{}

// Missing returns the expected names not present in dir, in expected order.
// A missing directory means every name is missing.
func (DirWalk) Missing(ctx context.Context, dir string, expected []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	present, err := listNames(dir)
	if err != nil {
		return nil, err
	}
	return subtract(expected, present), nil
}

// Record is a no-op; the file on disk is the record.
func (DirWalk) Record(context.Context, string, string) error { return nil }

// UpToDate reports whether dir already holds every expected name.
func UpToDate(ctx context.Context, c Checker, dir string, expected []string) (bool, error) {
	missing, err := c.Missing(ctx, dir, expected)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func listNames(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if name == MarkerFile || name == HistoryDir {
			continue
		}
		names[name] = struct{}{}
	}
	return names, nil
}

func subtract(expected []string, present map[string]struct{}) []string {
	missing := make([]string, 0, len(expected))
	for _, name := range expected {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return slices.Clip(missing)
}
