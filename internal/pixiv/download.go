package pixiv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"koneko/internal/catalog"
	"koneko/internal/fileutil"
	"koneko/internal/logging"
	"koneko/internal/services"
)

// DefaultImageReferer is sent with image requests; the image CDN rejects
// requests without it.
const DefaultImageReferer = "https://app-api.pixiv.net/"

// Downloader writes image bytes to disk. It implements pipeline.Fetcher.
type Downloader struct {
	HTTPClient *http.Client
	UserAgent  string
	Referer    string
	Logger     *slog.Logger
}

// Fetch downloads url into path. The file appears only once complete.
func (d *Downloader) Fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("pixiv: build download request: %w", err)
	}
	referer := strings.TrimSpace(d.Referer)
	if referer == "" {
		referer = DefaultImageReferer
	}
	req.Header.Set("Referer", referer)
	if ua := strings.TrimSpace(d.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := d.client().Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "pixiv", "download", url, err)
	}
	defer resp.Body.Close()
	if err := statusError(resp, "download"); err != nil {
		return err
	}

	written, err := fileutil.WriteAtomic(path, resp.Body)
	if err != nil {
		return services.Wrap(services.ErrDownload, "pixiv", "write", path, err)
	}
	d.logger().Debug("image downloaded",
		logging.String("url", url),
		logging.File(path),
		logging.Int("bytes", int(written)),
	)
	return nil
}

// FetchOriginal downloads the original-resolution image behind a resized
// master URL into dir, and returns the written path. Originals are stored
// as jpg or png and the URL does not say which, so a missing jpg is
// retried as png.
func (d *Downloader) FetchOriginal(ctx context.Context, masterURL, dir string) (string, error) {
	full := catalog.FullURL(masterURL, false)
	path := filepath.Join(dir, catalog.FileName(full))
	err := d.Fetch(ctx, full, path)
	if err == nil || !errors.Is(err, services.ErrNotFound) {
		return path, err
	}
	d.logger().Debug("original not found as jpg, retrying as png", logging.String("url", full))

	full = catalog.FullURL(masterURL, true)
	path = filepath.Join(dir, catalog.FileName(full))
	if err := d.Fetch(ctx, full, path); err != nil {
		return "", err
	}
	return path, nil
}

func (d *Downloader) client() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.NewNop()
}
