package layout

import (
	"strconv"
	"strings"
)

// ColumnHeader renders the numbered row printed above a gallery grid: for
// each of the first cols columns, spacings[i] blanks followed by i+1. When
// there are more columns than spacings, the last spacing repeats.
func ColumnHeader(spacings []int, cols int) string {
	var b strings.Builder
	for idx := 0; idx < cols; idx++ {
		b.WriteString(strings.Repeat(" ", max(spacingAt(spacings, idx), 0)))
		b.WriteString(strconv.Itoa(idx + 1))
	}
	return b.String()
}

// LineWidth is the width of the header for cols columns, counting one cell
// per column number.
func LineWidth(spacings []int, cols int) int {
	width := cols
	for idx := 0; idx < cols; idx++ {
		width += spacingAt(spacings, idx)
	}
	return width
}

func spacingAt(spacings []int, idx int) int {
	if len(spacings) == 0 {
		return 0
	}
	if idx < len(spacings) {
		return spacings[idx]
	}
	return spacings[len(spacings)-1]
}
