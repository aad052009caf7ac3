package preflight

import (
	"context"
	"io"

	"koneko/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. out is the
// stream images would be drawn to.
func RunAll(ctx context.Context, cfg *config.Config, out io.Writer) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.DownloadsDir != "" {
		results = append(results, CheckDirectoryAccess("Downloads directory", cfg.Paths.DownloadsDir))
	}
	results = append(results,
		CheckRenderer(cfg.Render.Command),
		CheckTerminal(out),
		CheckAPIFromConfig(ctx, cfg),
	)
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
