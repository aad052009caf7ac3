package layout

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoRoom reports a terminal too small to hold a single tile.
var ErrNoRoom = errors.New("terminal too small for one tile")

// Grid is the resolved layout for one terminal geometry.
type Grid struct {
	Cols        int
	Rows        int
	Xs          []int
	Ys          []int
	Size        int
	PageSpacing int
}

// NewGrid resolves the grid for a termWidth x termHeight terminal. xOffset
// shifts every column right, used by views that print text in the left
// margin.
func NewGrid(termWidth, termHeight int, s Settings, xOffset int) (*Grid, error) {
	cols := Columns(termWidth, s.TileWidth, s.XPadding)
	rows := Rows(termHeight, s.TileHeight, s.YPadding)
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d gives %d columns, %d rows", ErrNoRoom, termWidth, termHeight, cols, rows)
	}
	return &Grid{
		Cols:        cols,
		Rows:        rows,
		Xs:          XCoords(termWidth, s.TileWidth, s.XPadding, xOffset),
		Ys:          YCoords(termHeight, s.TileHeight, s.YPadding),
		Size:        s.ThumbnailSize,
		PageSpacing: s.PageSpacing,
	}, nil
}

// TileCount is the number of cells on one screen.
func (g *Grid) TileCount() int {
	return g.Cols * g.Rows
}

// Cell returns the coordinates for the item at ordinal. Ordinals past one
// screen wrap onto the next screen at the same position.
func (g *Grid) Cell(ordinal int) (x, y int) {
	slot := ordinal % g.TileCount()
	return g.Xs[slot%g.Cols], g.Ys[slot/g.Cols]
}

// PageBreak reports whether ordinal starts a new screen.
func (g *Grid) PageBreak(ordinal int) bool {
	return ordinal != 0 && ordinal%g.TileCount() == 0
}

// WithColumns returns a copy of g limited to at most n columns. Views whose
// rows have a fixed width, such as one artist avatar followed by that
// artist's recent works, use it to stop rows wrapping across artists.
func (g *Grid) WithColumns(n int) *Grid {
	out := *g
	if n > 0 && n < g.Cols {
		out.Cols = n
		out.Xs = slices.Clone(g.Xs[:n])
	} else {
		out.Xs = slices.Clone(g.Xs)
	}
	out.Ys = slices.Clone(g.Ys)
	return &out
}

// Grouped returns a copy of g with exactly groupSize columns, so every row
// holds one group. It fails with ErrNoRoom when a group does not fit on one
// row, since rows would then wrap across groups.
func (g *Grid) Grouped(groupSize int) (*Grid, error) {
	if groupSize <= 0 {
		return nil, fmt.Errorf("layout: group size %d must be positive", groupSize)
	}
	if g.Cols < groupSize {
		return nil, fmt.Errorf("%w: %d columns cannot hold a group of %d", ErrNoRoom, g.Cols, groupSize)
	}
	return g.WithColumns(groupSize), nil
}
