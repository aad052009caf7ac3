package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"koneko/internal/collection"
	"koneko/internal/config"
	"koneko/internal/pixiv"
	"koneko/internal/render"
	"koneko/internal/services"
	"koneko/internal/term"
)

const apiCheckTimeout = 5 * time.Second

// CheckAPI verifies that the catalog API is reachable and accepts the
// access token by requesting the first page of the feed.
func CheckAPI(ctx context.Context, baseURL, token, userAgent string) Result {
	const name = "Catalog API"

	if strings.TrimSpace(baseURL) == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing access token"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, apiCheckTimeout)
	defer cancel()

	client, err := pixiv.New(pixiv.Config{
		BaseURL:     baseURL,
		AccessToken: token,
		UserAgent:   userAgent,
		HTTPClient:  &http.Client{Timeout: apiCheckTimeout},
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if _, err := client.FetchPage(checkCtx, collection.Request{Kind: collection.KindFeed}); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckAPIFromConfig evaluates API status from config and connectivity.
func CheckAPIFromConfig(ctx context.Context, cfg *config.Config) Result {
	if cfg == nil {
		return Result{Name: "Catalog API", Detail: "Unknown"}
	}
	return CheckAPI(ctx, cfg.API.BaseURL, cfg.API.AccessToken, cfg.API.UserAgent)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRenderer verifies that the image-display command is well formed and
// its binary is on PATH.
func CheckRenderer(argv []string) Result {
	const name = "Image renderer"

	cmd, err := render.New(argv, io.Discard)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	path, err := exec.LookPath(cmd.Binary())
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", cmd.Binary())}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckTerminal reports whether out is an interactive terminal. Images are
// only drawn on a terminal.
func CheckTerminal(out io.Writer) Result {
	const name = "Terminal"

	if !term.IsTerminal(out) {
		return Result{Name: name, Detail: "output is not a terminal (images will not render)"}
	}
	f, ok := out.(*os.File)
	if !ok {
		return Result{Name: name, Passed: true, Detail: "interactive"}
	}
	w, h := term.Size(f)
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%dx%d", w, h)}
}

// summarizeAPIError produces a human-readable summary for API check failures.
func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	if errors.Is(err, services.ErrPageFetch) {
		return "rejected (check the access token): " + err.Error()
	}
	return err.Error()
}
