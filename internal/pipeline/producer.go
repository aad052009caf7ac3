package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"koneko/internal/logging"
	"koneko/internal/services"
	"koneko/internal/staleness"
)

// Producer fetches jobs sequentially in the order given.
type Producer struct {
	Fetcher Fetcher
	// Checker, when set, reports files already downloaded; those jobs
	// complete without a fetch.
	Checker staleness.Checker
	Logger  *slog.Logger
	Metrics *Metrics
}

// Run fetches every job and sends one Completion per job to out, then
// closes out. A failed fetch is reported as a Completion with Err set. Run
// stops early when ctx is cancelled.
func (p *Producer) Run(ctx context.Context, jobs []Job, out chan<- Completion) {
	defer close(out)
	logger := logging.WithContext(services.WithStage(ctx, "producer"), p.logger())

	present := p.present(ctx, logger, jobs)
	for _, job := range jobs {
		if ctx.Err() != nil {
			logger.Debug("producer cancelled", logging.Ordinal(job.Ordinal))
			return
		}
		completion := Completion{Ordinal: job.Ordinal, Path: job.Path}
		if _, ok := present[job.Path]; ok {
			p.Metrics.cached()
		} else if err := p.Fetcher.Fetch(ctx, job.URL, job.Path); err != nil {
			p.Metrics.failed()
			completion.Err = services.Wrap(services.ErrDownload, "producer", "fetch", job.URL, err)
			logger.Warn("download failed",
				logging.Ordinal(job.Ordinal),
				logging.String("url", job.URL),
				logging.Error(err),
			)
		} else {
			p.Metrics.fetched()
			p.record(ctx, logger, job)
		}
		select {
		case out <- completion:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Producer) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(p.Logger, "pipeline.producer")
}

// present returns the job paths the checker considers already downloaded.
// Checker errors are logged and treated as nothing present.
func (p *Producer) present(ctx context.Context, logger *slog.Logger, jobs []Job) map[string]struct{} {
	present := make(map[string]struct{})
	if p.Checker == nil {
		return present
	}
	byDir := make(map[string][]string)
	var dirs []string
	for _, job := range jobs {
		dir := filepath.Dir(job.Path)
		if _, ok := byDir[dir]; !ok {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], filepath.Base(job.Path))
	}
	for _, dir := range dirs {
		names := byDir[dir]
		missing, err := p.Checker.Missing(ctx, dir, names)
		if err != nil {
			logger.Warn("staleness check failed", logging.String("dir", dir), logging.Error(err))
			continue
		}
		absent := make(map[string]struct{}, len(missing))
		for _, name := range missing {
			absent[name] = struct{}{}
		}
		for _, name := range names {
			if _, ok := absent[name]; !ok {
				present[filepath.Join(dir, name)] = struct{}{}
			}
		}
	}
	return present
}

func (p *Producer) record(ctx context.Context, logger *slog.Logger, job Job) {
	if p.Checker == nil {
		return
	}
	if err := p.Checker.Record(ctx, filepath.Dir(job.Path), filepath.Base(job.Path)); err != nil {
		logger.Warn("record download failed", logging.File(job.Path), logging.Error(err))
	}
}
