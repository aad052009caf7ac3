package collection

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"

	"koneko/internal/catalog"
	"koneko/internal/logging"
)

// Collection is the capability set shared by every variant.
type Collection interface {
	Kind() Kind
	Load(ctx context.Context, src PageSource) error
	View() (View, error)
}

var (
	_ Collection = (*Gallery)(nil)
	_ Collection = (*Feed)(nil)
	_ Collection = (*Users)(nil)
	_ Collection = (*Post)(nil)
)

// View is a read-only snapshot of the active collection's current page.
// Slices are copies; mutating them does not affect the collection.
type View struct {
	Kind         Kind
	PageNum      int
	DownloadPath string
	URLs         []string
	Names        []string
	Filenames    []string
	// SplitPoint is the number of leading artist entries in a followed-artist
	// view and zero otherwise.
	SplitPoint int
}

func newView(kind Kind, pageNum int, dir string, urls, names []string, split int) View {
	return View{
		Kind:         kind,
		PageNum:      pageNum,
		DownloadPath: dir,
		URLs:         slices.Clone(urls),
		Names:        slices.Clone(names),
		Filenames:    catalog.OutputNames(urls, names),
		SplitPoint:   split,
	}
}

// Item is one downloadable entry of a view.
type Item struct {
	Ordinal int
	URL     string
	Name    string
	Path    string
}

// Items pairs each URL with its output path. The list is as long as
// Filenames.
func (v View) Items() []Item {
	items := make([]Item, 0, len(v.Filenames))
	for idx, filename := range v.Filenames {
		items = append(items, Item{
			Ordinal: idx,
			URL:     v.URLs[idx],
			Name:    v.Names[idx],
			Path:    filepath.Join(v.DownloadPath, filename),
		})
	}
	return items
}

// Session owns the active collection for one browsing session.
type Session struct {
	ID     string
	src    PageSource
	active Collection
	logger *slog.Logger
}

// NewSession starts a session that fetches pages from src.
func NewSession(id string, src PageSource, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		ID:     id,
		src:    src,
		logger: logging.NewComponentLogger(logger, "collection"),
	}
}

// Open makes c the active collection and loads its current page.
func (s *Session) Open(ctx context.Context, c Collection) error {
	s.active = c
	return s.Load(ctx)
}

// Active returns the active collection, or nil before Open.
func (s *Session) Active() Collection {
	return s.active
}

// Load fetches the active collection's current page if needed.
func (s *Session) Load(ctx context.Context) error {
	if s.active == nil {
		return ErrNotFetched
	}
	logger := logging.WithContext(ctx, s.logger)
	if err := s.active.Load(ctx, s.src); err != nil {
		logger.Warn("page load failed",
			logging.String("collection", s.active.Kind().String()),
			logging.Error(err),
		)
		return err
	}
	logger.Debug("page loaded", logging.String("collection", s.active.Kind().String()))
	return nil
}

// View snapshots the active collection.
func (s *Session) View() (View, error) {
	if s.active == nil {
		return View{}, ErrNotFetched
	}
	return s.active.View()
}
