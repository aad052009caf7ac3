package pixiv

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"koneko/internal/collection"
	"koneko/internal/fileutil"
	"koneko/internal/logging"
	"koneko/internal/services"
)

// PagePath returns where the raw page for req is stored under root:
// root/<kind>/<id>/<offset>.json, or root/post/<id>.json for posts.
func PagePath(root string, req collection.Request) string {
	if req.Kind == collection.KindPost {
		return filepath.Join(root, req.Kind.String(), req.ID+".json")
	}
	return filepath.Join(root, req.Kind.String(), req.ID, strconv.Itoa(req.Offset)+".json")
}

// FilePageSource replays raw pages saved on disk.
type FilePageSource struct {
	Root string
}

// FetchPage implements collection.PageSource.
func (s FilePageSource) FetchPage(ctx context.Context, req collection.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := PagePath(s.Root, req)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "pixiv", "replay page", path, err)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPageFetch, "pixiv", "replay page", path, err)
	}
	return data, nil
}

// Recorder saves every page its Source returns so a later session can
// replay it with FilePageSource. Saving is best-effort: a failed write is
// logged and the fetched page is still returned.
type Recorder struct {
	Source collection.PageSource
	Root   string
	Logger *slog.Logger
}

// FetchPage implements collection.PageSource.
func (r Recorder) FetchPage(ctx context.Context, req collection.Request) ([]byte, error) {
	data, err := r.Source.FetchPage(ctx, req)
	if err != nil {
		return nil, err
	}
	path := PagePath(r.Root, req)
	if _, err := fileutil.WriteAtomic(path, bytes.NewReader(data)); err != nil && r.Logger != nil {
		r.Logger.Warn("page not recorded",
			logging.String(logging.FieldCollection, req.Kind.String()),
			logging.String("path", path),
			logging.Error(err),
		)
	}
	return data, nil
}
