package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"koneko/internal/catalog"
	"koneko/internal/layout"
	"koneko/internal/logging"
	"koneko/internal/services"
	"koneko/internal/term"
)

// Display positions each released path on the grid and renders it.
type Display struct {
	Grid     *layout.Grid
	Renderer Renderer
	// Out receives the blank lines that scroll a full screen out of view.
	Out io.Writer
	// Slots maps an ordinal to its grid slot when the presentation order
	// differs from catalog order. Ordinals absent from Slots use their own
	// value.
	Slots map[int]int
	// Labels holds text printed at column LabelX beside each grid row, one
	// entry per row across all screens. Lines of a label stack downwards.
	Labels  []string
	LabelX  int
	Logger  *slog.Logger
	Metrics *Metrics
}

// Run renders paths from in until in closes. It returns the first render
// error, or ctx.Err() when cancelled.
func (d *Display) Run(ctx context.Context, in <-chan string) error {
	logger := logging.WithContext(services.WithStage(ctx, "display"), d.logger())
	for {
		var (
			path string
			ok   bool
		)
		select {
		case path, ok = <-in:
		case <-ctx.Done():
			return ctx.Err()
		}
		if !ok {
			return nil
		}
		if err := d.show(ctx, logger, path); err != nil {
			return err
		}
	}
}

func (d *Display) show(ctx context.Context, logger *slog.Logger, path string) error {
	ordinal, err := catalog.OrdinalFromName(path)
	if err != nil {
		logger.Warn("skipping path without ordinal", logging.File(path), logging.Error(err))
		return nil
	}
	slot := d.slot(ordinal)
	if d.Grid.PageBreak(slot) {
		if err := d.scroll(); err != nil {
			return services.Wrap(services.ErrRender, "display", "scroll", "", err)
		}
	}
	x, y := d.Grid.Cell(slot)
	if err := d.label(slot, y); err != nil {
		return services.Wrap(services.ErrRender, "display", "label", "", err)
	}
	if err := d.Renderer.Render(ctx, path, d.Grid.Size, x, y); err != nil {
		return services.Wrap(services.ErrRender, "display", "render", fmt.Sprintf("ordinal %d", ordinal), err)
	}
	d.Metrics.displayed()
	logger.Debug("rendered",
		logging.Ordinal(ordinal),
		logging.Int("x", x),
		logging.Int("y", y),
	)
	return nil
}

func (d *Display) slot(ordinal int) int {
	if s, ok := d.Slots[ordinal]; ok {
		return s
	}
	return ordinal
}

func (d *Display) label(slot, y int) error {
	if d.Out == nil || slot%d.Grid.Cols != 0 {
		return nil
	}
	row := slot / d.Grid.Cols
	if row >= len(d.Labels) {
		return nil
	}
	for i, line := range strings.Split(d.Labels[row], "\n") {
		if err := term.MoveTo(d.Out, d.LabelX, y+i); err != nil {
			return err
		}
		if _, err := io.WriteString(d.Out, line); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) scroll() error {
	if d.Out == nil {
		return nil
	}
	return term.Scroll(d.Out, d.Grid.PageSpacing)
}

func (d *Display) logger() *slog.Logger {
	if d.Logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(d.Logger, "pipeline.display")
}

// SlotsFor inverts a presentation order: order[slot] is the ordinal shown
// in slot.
func SlotsFor(order []int) map[int]int {
	if order == nil {
		return nil
	}
	slots := make(map[int]int, len(order))
	for slot, ordinal := range order {
		slots[ordinal] = slot
	}
	return slots
}
