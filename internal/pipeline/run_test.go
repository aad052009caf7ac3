package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"koneko/internal/logging"
	"koneko/internal/pipeline"
	"koneko/internal/services"
	"koneko/internal/staleness"
)

type fileFetcher struct {
	mu      sync.Mutex
	fetched []string
	fail    map[string]bool
}

func (f *fileFetcher) Fetch(_ context.Context, url, path string) error {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	if f.fail[url] {
		return errors.New("404")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(url), 0o644)
}

func makeJobs(dir string, n int) []pipeline.Job {
	var urls, paths []string
	for i := 0; i < n; i++ {
		urls = append(urls, fmt.Sprintf("https://i.pximg.net/x/%d.jpg", i))
		paths = append(paths, filepath.Join(dir, fmt.Sprintf("%03d_item%d.jpg", i, i)))
	}
	return pipeline.JobsFrom(urls, paths)
}

func renderedOrdinals(calls []renderCall) []int {
	var out []int
	for _, c := range calls {
		var n int
		_, _ = fmt.Sscanf(filepath.Base(c.path), "%03d_", &n)
		out = append(out, n)
	}
	return out
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestRunDisplaysInOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2232374", "0")
	reg := prometheus.NewRegistry()
	renderer := &recordingRenderer{}
	fetcher := &fileFetcher{}
	var out bytes.Buffer

	err := pipeline.Run(context.Background(), pipeline.Options{
		Jobs:     makeJobs(dir, 12),
		Fetcher:  fetcher,
		Renderer: renderer,
		Checker:  staleness.DirWalk{},
		Grid:     testGrid(t),
		Out:      &out,
		Logger:   logging.NewNop(),
		Metrics:  pipeline.NewMetrics(reg),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := make([]int, 12)
	for i := range want {
		want[i] = i
	}
	if got := renderedOrdinals(renderer.calls); !slices.Equal(got, want) {
		t.Fatalf("rendered %v", got)
	}
	if strings.Count(out.String(), "\n") != 23 {
		t.Fatalf("expected one page scroll, got %q", out.String())
	}
	if got := counterValue(t, reg, "koneko_pipeline_jobs_fetched_total"); got != 12 {
		t.Fatalf("fetched counter = %v", got)
	}
	if got := counterValue(t, reg, "koneko_pipeline_items_displayed_total"); got != 12 {
		t.Fatalf("displayed counter = %v", got)
	}

	// A second run finds every file on disk and fetches nothing.
	fetcher.fetched = nil
	renderer.calls = nil
	reg = prometheus.NewRegistry()
	err = pipeline.Run(context.Background(), pipeline.Options{
		Jobs:     makeJobs(dir, 12),
		Fetcher:  fetcher,
		Renderer: renderer,
		Checker:  staleness.DirWalk{},
		Grid:     testGrid(t),
		Metrics:  pipeline.NewMetrics(reg),
	})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(fetcher.fetched) != 0 {
		t.Fatalf("refetched %v", fetcher.fetched)
	}
	if got := counterValue(t, reg, "koneko_pipeline_jobs_cached_total"); got != 12 {
		t.Fatalf("cached counter = %v", got)
	}
	if len(renderer.calls) != 12 {
		t.Fatalf("second run rendered %d", len(renderer.calls))
	}
}

func TestRunFailurePolicies(t *testing.T) {
	cases := []struct {
		policy  pipeline.Policy
		want    []int
		wantErr error
	}{
		{pipeline.PolicyDrop, []int{0, 1}, nil},
		{pipeline.PolicySkip, []int{0, 1, 3, 4}, nil},
		{pipeline.PolicyFail, []int{0, 1}, pipeline.ErrIncomplete},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			dir := t.TempDir()
			renderer := &recordingRenderer{}
			fetcher := &fileFetcher{fail: map[string]bool{"https://i.pximg.net/x/2.jpg": true}}
			err := pipeline.Run(context.Background(), pipeline.Options{
				Jobs:     makeJobs(dir, 5),
				Fetcher:  fetcher,
				Renderer: renderer,
				Grid:     testGrid(t),
				Policy:   tc.policy,
			})
			if tc.wantErr == nil && err != nil {
				t.Fatalf("Run: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("Run err = %v, want %v", err, tc.wantErr)
			}
			if got := renderedOrdinals(renderer.calls); !slices.Equal(got, tc.want) {
				t.Fatalf("rendered %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRunRenderFailureStopsPipeline(t *testing.T) {
	renderer := &recordingRenderer{failOn: "001_item1.jpg"}
	err := pipeline.Run(context.Background(), pipeline.Options{
		Jobs:     makeJobs(t.TempDir(), 5),
		Fetcher:  &fileFetcher{},
		Renderer: renderer,
		Grid:     testGrid(t),
	})
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("Run err = %v, want ErrRender", err)
	}
}

func TestRunWithPresentationOrder(t *testing.T) {
	fetcher := &fileFetcher{}
	renderer := &recordingRenderer{}
	order := []int{0, 2, 3, 1}
	err := pipeline.Run(context.Background(), pipeline.Options{
		Jobs:     makeJobs(t.TempDir(), 4),
		Order:    order,
		Fetcher:  fetcher,
		Renderer: renderer,
		Grid:     testGrid(t),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := renderedOrdinals(renderer.calls); !slices.Equal(got, order) {
		t.Fatalf("rendered %v, want %v", got, order)
	}
	if fetcher.fetched[1] != "https://i.pximg.net/x/2.jpg" {
		t.Fatalf("fetch order %v", fetcher.fetched)
	}
	// Ordinal 1 occupies slot 3.
	if last := renderer.calls[3]; last.x != 56 {
		t.Fatalf("ordinal 1 at x=%d, want 56", last.x)
	}
}

func TestRunRejectsDuplicateOrdinals(t *testing.T) {
	jobs := []pipeline.Job{{Ordinal: 0}, {Ordinal: 0}}
	err := pipeline.Run(context.Background(), pipeline.Options{
		Jobs:     jobs,
		Fetcher:  &fileFetcher{},
		Renderer: &recordingRenderer{},
		Grid:     testGrid(t),
	})
	if err == nil {
		t.Fatal("expected duplicate ordinal error")
	}
}

func TestProducerReportsFailures(t *testing.T) {
	jobs := makeJobs(t.TempDir(), 3)
	fetcher := &fileFetcher{fail: map[string]bool{jobs[1].URL: true}}
	out := make(chan pipeline.Completion, 3)
	(&pipeline.Producer{Fetcher: fetcher}).Run(context.Background(), jobs, out)
	var got []pipeline.Completion
	for c := range out {
		got = append(got, c)
	}
	if len(got) != 3 {
		t.Fatalf("completions = %d", len(got))
	}
	if got[0].Err != nil || got[2].Err != nil {
		t.Fatalf("unexpected errors: %v, %v", got[0].Err, got[2].Err)
	}
	if !errors.Is(got[1].Err, services.ErrDownload) {
		t.Fatalf("failed completion err = %v", got[1].Err)
	}
}

func TestRunWatchesExternalDownloads(t *testing.T) {
	dir := t.TempDir()
	renderer := &recordingRenderer{}
	jobs := makeJobs(dir, 3)
	if err := os.WriteFile(jobs[2].Path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- pipeline.Run(context.Background(), pipeline.Options{
			Jobs:     jobs,
			WatchDir: dir,
			Renderer: renderer,
			Grid:     testGrid(t),
			Logger:   logging.NewNop(),
		})
	}()

	for _, i := range []int{1, 0} {
		tmp := filepath.Join(dir, ".partial")
		if err := os.WriteFile(tmp, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := os.Rename(tmp, jobs[i].Path); err != nil {
			t.Fatalf("Rename: %v", err)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := renderedOrdinals(renderer.calls); !slices.Equal(got, []int{0, 1, 2}) {
		t.Fatalf("rendered %v", got)
	}
}
