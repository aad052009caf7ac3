package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"koneko/internal/services"
)

// Placeholders substituted into each argument of the command template.
const (
	PlaceholderPath = "{path}"
	PlaceholderSize = "{size}"
	PlaceholderX    = "{x}"
	PlaceholderY    = "{y}"
)

// Command renders by executing an argv template such as
// ["kitty", "+kitten", "icat", "--place", "{size}x{size}@{x}x{y}", "{path}"].
type Command struct {
	argv   []string
	stdout io.Writer
}

// New validates argv and returns a renderer whose output goes to stdout,
// normally the terminal.
func New(argv []string, stdout io.Writer) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "render", "new", "render command is empty", nil)
	}
	if !strings.Contains(strings.Join(argv, " "), PlaceholderPath) {
		return nil, services.Wrap(services.ErrConfiguration, "render", "new",
			fmt.Sprintf("render command must reference %s", PlaceholderPath), nil)
	}
	return &Command{argv: append([]string(nil), argv...), stdout: stdout}, nil
}

// Binary is the executable the command runs.
func (c *Command) Binary() string { return c.argv[0] }

// Render runs the command for one image. Stderr is captured into the error.
func (c *Command) Render(ctx context.Context, path string, size, x, y int) error {
	args := Expand(c.argv, path, size, x, y)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stdout = c.stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return services.Wrap(services.ErrRender, "render", "exec", args[0], err)
	}
	return nil
}

// Expand substitutes the placeholders in every argument.
func Expand(argv []string, path string, size, x, y int) []string {
	replacer := strings.NewReplacer(
		PlaceholderPath, path,
		PlaceholderSize, strconv.Itoa(size),
		PlaceholderX, strconv.Itoa(x),
		PlaceholderY, strconv.Itoa(y),
	)
	out := make([]string, len(argv))
	for idx, arg := range argv {
		out[idx] = replacer.Replace(arg)
	}
	return out
}

// Lister is a renderer that prints one line per item instead of drawing
// it, for terminals without inline image support.
type Lister struct {
	W io.Writer
}

// Render writes the item's path and placement.
func (l Lister) Render(_ context.Context, path string, size, x, y int) error {
	if _, err := fmt.Fprintf(l.W, "%s\tsize=%d x=%d y=%d\n", path, size, x, y); err != nil {
		return services.Wrap(services.ErrRender, "render", "list", path, err)
	}
	return nil
}
