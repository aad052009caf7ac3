package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"koneko/internal/layout"
	"koneko/internal/logging"
	"koneko/internal/staleness"
)

// Options configures one pipeline run.
type Options struct {
	Jobs []Job
	// Order is the presentation order of ordinals; nil means catalog order.
	// Jobs are fetched and released in this order.
	Order       []int
	Fetcher     Fetcher
	Renderer    Renderer
	Checker     staleness.Checker
	Grid        *layout.Grid
	Policy      Policy
	WaitTimeout time.Duration
	Out         io.Writer
	// WatchDir, when set, replaces the fetching producer: completions come
	// from files another process writes into this directory, and Fetcher is
	// not used.
	WatchDir string
	// Labels and LabelX are passed to the display; see Display.
	Labels  []string
	LabelX  int
	Logger  *slog.Logger
	Metrics *Metrics
}

// Run downloads opts.Jobs and renders them in order. The producer and
// sequencer run on their own goroutines; the display runs on the caller's.
// Run returns after all three stages have stopped, with the first error
// among render failure, ErrIncomplete, and cancellation.
func Run(ctx context.Context, opts Options) error {
	if (opts.Fetcher == nil && opts.WatchDir == "") || opts.Renderer == nil || opts.Grid == nil {
		return errors.New("pipeline: fetcher, renderer, and grid are required")
	}
	jobs, expected, err := arrange(opts.Jobs, opts.Order)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	completions := make(chan Completion, len(jobs))
	paths := make(chan string, len(jobs))

	producer := &Producer{Fetcher: opts.Fetcher, Checker: opts.Checker, Logger: opts.Logger, Metrics: opts.Metrics}
	sequencer := &Sequencer{Policy: opts.Policy, WaitTimeout: opts.WaitTimeout, Logger: opts.Logger, Metrics: opts.Metrics}
	display := &Display{
		Grid:     opts.Grid,
		Renderer: opts.Renderer,
		Out:      opts.Out,
		Slots:    SlotsFor(opts.Order),
		Labels:   opts.Labels,
		LabelX:   opts.LabelX,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
	}

	var wg sync.WaitGroup
	var seqErr, watchErr error
	if opts.WatchDir != "" {
		wg.Go(func() { watchErr = WatchDir(ctx, opts.WatchDir, expected, completions, opts.Logger) })
	} else {
		wg.Go(func() { producer.Run(ctx, jobs, completions) })
	}
	wg.Go(func() { seqErr = sequencer.Run(ctx, expected, completions, paths) })

	displayErr := display.Run(ctx, paths)
	cancel()
	wg.Wait()

	logger := logging.NewComponentLogger(orNop(opts.Logger), "pipeline")
	switch {
	case displayErr != nil && !errors.Is(displayErr, context.Canceled):
		return displayErr
	case seqErr != nil && !errors.Is(seqErr, context.Canceled):
		return seqErr
	case watchErr != nil && !errors.Is(watchErr, context.Canceled):
		return watchErr
	case displayErr != nil:
		return displayErr
	}
	logger.Debug("pipeline finished", logging.Int("jobs", len(jobs)))
	return nil
}

// arrange orders jobs by the presentation order and returns the expected
// ordinal sequence for the sequencer.
func arrange(jobs []Job, order []int) ([]Job, []int, error) {
	byOrdinal := make(map[int]Job, len(jobs))
	for _, job := range jobs {
		if _, dup := byOrdinal[job.Ordinal]; dup {
			return nil, nil, fmt.Errorf("pipeline: duplicate ordinal %d", job.Ordinal)
		}
		byOrdinal[job.Ordinal] = job
	}
	if order == nil {
		expected := make([]int, len(jobs))
		for idx, job := range jobs {
			expected[idx] = job.Ordinal
		}
		return jobs, expected, nil
	}
	arranged := make([]Job, 0, len(jobs))
	expected := make([]int, 0, len(jobs))
	for _, ordinal := range order {
		job, ok := byOrdinal[ordinal]
		if !ok {
			continue
		}
		arranged = append(arranged, job)
		expected = append(expected, ordinal)
	}
	return arranged, expected, nil
}

func orNop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return logging.NewNop()
	}
	return logger
}

// JobsFrom pairs urls with paths; the index is the ordinal.
func JobsFrom(urls, paths []string) []Job {
	n := min(len(urls), len(paths))
	jobs := make([]Job, 0, n)
	for idx := 0; idx < n; idx++ {
		jobs = append(jobs, Job{Ordinal: idx, URL: urls[idx], Path: paths[idx]})
	}
	return jobs
}
