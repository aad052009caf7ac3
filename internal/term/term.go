package term

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// Fallback geometry used when the size cannot be read from the terminal or
// the COLUMNS and LINES environment variables.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Size returns the width and height in cells of the terminal on f. When f
// is not a terminal it falls back to COLUMNS and LINES, then to 80x24.
func Size(f *os.File) (width, height int) {
	if f != nil {
		ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err == nil && ws.Col > 0 && ws.Row > 0 {
			return int(ws.Col), int(ws.Row)
		}
	}
	return envInt("COLUMNS", DefaultWidth), envInt("LINES", DefaultHeight)
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// MoveTo moves the cursor to column x, row y, both counted from zero.
func MoveTo(w io.Writer, x, y int) error {
	_, err := fmt.Fprintf(w, "\033[%d;%dH", y+1, x+1)
	return err
}

// Scroll prints n blank lines, pushing earlier output out of view.
func Scroll(w io.Writer, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Repeat("\n", n))
	return err
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
