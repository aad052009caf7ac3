package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"koneko/internal/catalog"
	"koneko/internal/logging"
	"koneko/internal/services"
)

// WatchDir is a producer for downloads written by another process. It
// reports each wanted ordinal once a file carrying it appears in dir, and
// closes out when every ordinal has been seen or ctx is cancelled. Files
// already present are reported first. Writers should create files under a
// temporary name and rename them into place when complete.
func WatchDir(ctx context.Context, dir string, ordinals []int, out chan<- Completion, logger *slog.Logger) error {
	defer close(out)
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(services.WithStage(ctx, "watch"), logging.NewComponentLogger(logger, "pipeline.watch"))

	remaining := make(map[int]struct{}, len(ordinals))
	for _, ordinal := range ordinals {
		remaining[ordinal] = struct{}{}
	}
	if len(remaining) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch download dir: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch download dir: %w", err)
	}

	report := func(path string) error {
		ordinal, err := catalog.OrdinalFromName(path)
		if err != nil {
			return nil
		}
		if _, ok := remaining[ordinal]; !ok {
			return nil
		}
		delete(remaining, ordinal)
		select {
		case out <- Completion{Ordinal: ordinal, Path: path}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list download dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := report(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}

	for len(remaining) > 0 {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if err := report(event.Name); err != nil {
				return err
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.Error(watchErr))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
