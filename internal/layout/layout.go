package layout

import "math"

// Settings is the plain settings record the grid is computed from. Values
// come from the [lscat] config section; this package never reads
// configuration itself.
type Settings struct {
	TileWidth     int
	TileHeight    int
	XPadding      int
	YPadding      int
	PageSpacing   int
	ThumbnailSize int
	GroupSize     int
}

// Columns is the number of tiles that fit across termWidth, rounded to the
// nearest whole tile.
func Columns(termWidth, tileWidth, padding int) int {
	step := tileWidth + padding
	if step <= 0 || termWidth <= 0 {
		return 0
	}
	return int(math.Round(float64(termWidth) / float64(step)))
}

// Rows is the number of fully visible tile rows in termHeight. A partially
// visible row is not counted.
func Rows(termHeight, tileHeight, padding int) int {
	step := tileHeight + padding
	if step <= 0 || termHeight <= 0 {
		return 0
	}
	return termHeight / step
}

// XCoords returns the left edge of every column.
func XCoords(termWidth, tileWidth, padding, offset int) []int {
	cols := Columns(termWidth, tileWidth, padding)
	xs := make([]int, cols)
	for col := range xs {
		xs[col] = (col%cols)*tileWidth + padding + offset
	}
	return xs
}

// YCoords returns the top edge of every row.
func YCoords(termHeight, tileHeight, padding int) []int {
	rows := Rows(termHeight, tileHeight, padding)
	ys := make([]int, rows)
	for row := range ys {
		ys[row] = row * (tileHeight + padding)
	}
	return ys
}

// InterleaveOrder returns a permutation of [0, total) that places each group
// head before its run of body items. Slot idx with idx%groupSize == 0 holds
// head idx/groupSize; the other slots hold the body items in sequence, which
// start after the last head. For a followed-artist page laid out as every
// avatar then every work, this shows each artist's avatar followed by that
// artist's works.
func InterleaveOrder(total, groupSize int) []int {
	if total <= 0 {
		return nil
	}
	if groupSize <= 0 {
		groupSize = 1
	}
	heads := (total + groupSize - 1) / groupSize
	order := make([]int, total)
	for idx := range order {
		group := idx / groupSize
		if idx%groupSize == 0 {
			order[idx] = group
			continue
		}
		order[idx] = idx + heads - 1 - group
	}
	return order
}
