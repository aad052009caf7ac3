package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"koneko/internal/layout"
	"koneko/internal/pipeline"
	"koneko/internal/services"
)

type renderCall struct {
	path       string
	size, x, y int
}

type recordingRenderer struct {
	mu     sync.Mutex
	calls  []renderCall
	out    *bytes.Buffer
	failOn string
}

func (r *recordingRenderer) Render(_ context.Context, path string, size, x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && strings.HasSuffix(path, r.failOn) {
		return errors.New("icat exited 1")
	}
	r.calls = append(r.calls, renderCall{path: path, size: size, x: x, y: y})
	if r.out != nil {
		fmt.Fprintf(r.out, "[%s]", path)
	}
	return nil
}

func testGrid(t *testing.T) *layout.Grid {
	t.Helper()
	grid, err := layout.NewGrid(100, 20, layout.Settings{
		TileWidth: 18, TileHeight: 8, XPadding: 2, YPadding: 1, PageSpacing: 23, ThumbnailSize: 310,
	}, 0)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return grid
}

func feed(paths ...string) <-chan string {
	ch := make(chan string, len(paths))
	for _, p := range paths {
		ch <- p
	}
	close(ch)
	return ch
}

func TestDisplayPositionsAndScrolls(t *testing.T) {
	var out bytes.Buffer
	renderer := &recordingRenderer{out: &out}
	display := &pipeline.Display{Grid: testGrid(t), Renderer: renderer, Out: &out}

	var paths []string
	for i := 0; i < 12; i++ {
		paths = append(paths, fmt.Sprintf("/cache/0/%03d_item.jpg", i))
	}
	if err := display.Run(context.Background(), feed(paths...)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(renderer.calls) != 12 {
		t.Fatalf("rendered %d items", len(renderer.calls))
	}
	first, sixth, eleventh := renderer.calls[0], renderer.calls[5], renderer.calls[10]
	if first.x != 2 || first.y != 0 || first.size != 310 {
		t.Fatalf("first cell = %+v", first)
	}
	if sixth.x != 2 || sixth.y != 9 {
		t.Fatalf("sixth cell = %+v", sixth)
	}
	if eleventh.x != 2 || eleventh.y != 0 {
		t.Fatalf("eleventh cell = %+v", eleventh)
	}

	// Exactly one scroll, placed between the 10th and 11th items.
	text := out.String()
	scroll := strings.Repeat("\n", 23)
	if strings.Count(text, scroll) != 1 {
		t.Fatalf("expected one scroll in %q", text)
	}
	if !strings.Contains(text, "[/cache/0/009_item.jpg]"+scroll+"[/cache/0/010_item.jpg]") {
		t.Fatalf("scroll not between pages: %q", text)
	}
}

func TestDisplayUsesSlots(t *testing.T) {
	renderer := &recordingRenderer{}
	order := layout.InterleaveOrder(8, 4)
	display := &pipeline.Display{Grid: testGrid(t), Renderer: renderer, Slots: pipeline.SlotsFor(order)}
	// order = [0 2 3 4 1 5 6 7]: ordinal 1 is shown in slot 4.
	if err := display.Run(context.Background(), feed("/c/000_a.jpg", "/c/002_b.jpg", "/c/003_c.jpg", "/c/004_d.jpg", "/c/001_e.jpg")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	last := renderer.calls[len(renderer.calls)-1]
	if last.x != 74 || last.y != 0 {
		t.Fatalf("ordinal 1 rendered at (%d,%d), want slot 4 (74,0)", last.x, last.y)
	}
}

func TestDisplayRenderFailure(t *testing.T) {
	renderer := &recordingRenderer{failOn: "001_b.jpg"}
	display := &pipeline.Display{Grid: testGrid(t), Renderer: renderer}
	err := display.Run(context.Background(), feed("/c/000_a.jpg", "/c/001_b.jpg", "/c/002_c.jpg"))
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("Run err = %v, want ErrRender", err)
	}
	if len(renderer.calls) != 1 {
		t.Fatalf("rendered %d items after failure", len(renderer.calls))
	}
}

func TestDisplaySkipsPathWithoutOrdinal(t *testing.T) {
	renderer := &recordingRenderer{}
	display := &pipeline.Display{Grid: testGrid(t), Renderer: renderer}
	if err := display.Run(context.Background(), feed("/c/.koneko", "/c/000_a.jpg")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(renderer.calls) != 1 {
		t.Fatalf("rendered %d items", len(renderer.calls))
	}
}

func TestDisplayPrintsRowLabels(t *testing.T) {
	var out bytes.Buffer
	grid := testGrid(t)
	display := &pipeline.Display{
		Grid:     grid,
		Renderer: &recordingRenderer{},
		Out:      &out,
		Labels:   []string{"01\nalice", "02\nbob"},
		LabelX:   3,
	}
	var paths []string
	for i := 0; i < grid.Cols+1; i++ {
		paths = append(paths, fmt.Sprintf("/c/%03d_x.jpg", i))
	}
	if err := display.Run(context.Background(), feed(paths...)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	_, y0 := grid.Cell(0)
	_, y1 := grid.Cell(grid.Cols)
	want := fmt.Sprintf("\033[%d;4H01\033[%d;4Halice\033[%d;4H02\033[%d;4Hbob", y0+1, y0+2, y1+1, y1+2)
	if out.String() != want {
		t.Fatalf("labels written as %q, want %q", out.String(), want)
	}
}
