package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"koneko/internal/cachedir"
	"koneko/internal/catalog"
	"koneko/internal/collection"
	"koneko/internal/config"
	"koneko/internal/layout"
	"koneko/internal/logging"
	"koneko/internal/pipeline"
	"koneko/internal/pixiv"
	"koneko/internal/preflight"
	"koneko/internal/render"
	"koneko/internal/services"
	"koneko/internal/staleness"
	"koneko/internal/term"
	"koneko/internal/textutil"
)

type browseFlags struct {
	page     int
	offline  string
	record   string
	noRender bool
	external bool
}

func (f *browseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 0, "Page number to open, counted from zero")
	cmd.Flags().StringVar(&f.offline, "offline", "", "Replay raw catalog pages saved under this directory instead of calling the API")
	cmd.Flags().StringVar(&f.record, "record", "", "Save every fetched catalog page under this directory")
	cmd.Flags().BoolVar(&f.noRender, "no-render", false, "List downloaded items instead of drawing them")
	cmd.Flags().BoolVar(&f.external, "external", false, "Wait for files another downloader writes into the page directory instead of fetching")
}

// browser runs one browse command: it owns the session, the cache-root
// lock and the pipeline collaborators for the duration of the command.
type browser struct {
	cfg    *config.Config
	logger *slog.Logger
	flags  browseFlags
	out    io.Writer
	src    collection.PageSource
	// size reports the terminal geometry; tests replace it.
	size func() (int, int)
}

func (c *commandContext) newBrowser(cmd *cobra.Command, flags browseFlags) (*browser, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if flags.page < 0 {
		return nil, services.Wrap(services.ErrValidation, "cli", "page", fmt.Sprintf("page %d is negative", flags.page), nil)
	}
	b := &browser{
		cfg:    cfg,
		logger: logger,
		flags:  flags,
		out:    cmd.OutOrStdout(),
		size:   terminalSize(cmd.OutOrStdout()),
	}
	if b.src, err = b.pageSource(); err != nil {
		return nil, err
	}
	return b, nil
}

func terminalSize(out io.Writer) func() (int, int) {
	return func() (int, int) {
		f, _ := out.(*os.File)
		return term.Size(f)
	}
}

func (b *browser) pageSource() (collection.PageSource, error) {
	if b.flags.offline != "" {
		root, err := config.ExpandPath(b.flags.offline)
		if err != nil {
			return nil, err
		}
		return pixiv.FilePageSource{Root: root}, nil
	}
	client, err := pixiv.New(pixiv.Config{
		BaseURL:     b.cfg.API.BaseURL,
		AccessToken: b.cfg.API.AccessToken,
		UserAgent:   b.cfg.API.UserAgent,
		Referer:     b.cfg.API.Referer,
		HTTPClient:  &http.Client{Timeout: b.apiTimeout()},
	})
	if err != nil {
		return nil, err
	}
	if b.flags.record == "" {
		return client, nil
	}
	root, err := config.ExpandPath(b.flags.record)
	if err != nil {
		return nil, err
	}
	return pixiv.Recorder{Source: client, Root: root, Logger: logging.NewComponentLogger(b.logger, "pixiv")}, nil
}

func (b *browser) apiTimeout() time.Duration {
	return time.Duration(b.cfg.API.TimeoutSeconds) * time.Second
}

func (b *browser) downloader() *pixiv.Downloader {
	return &pixiv.Downloader{
		HTTPClient: &http.Client{Timeout: b.apiTimeout()},
		UserAgent:  b.cfg.API.UserAgent,
		Referer:    b.cfg.API.Referer,
		Logger:     logging.NewComponentLogger(b.logger, "pixiv"),
	}
}

// browse opens coll, moves it to the requested page and draws that page.
func (b *browser) browse(ctx context.Context, coll collection.Collection) (collection.View, error) {
	root := cachedir.New(b.cfg.Paths.CacheDir)
	if err := root.Lock(); err != nil {
		return collection.View{}, err
	}
	defer func() {
		if err := root.Unlock(); err != nil {
			b.logger.Warn("cache lock not released", logging.Error(err))
		}
	}()

	sessionID := uuid.NewString()
	ctx = services.WithSessionID(ctx, sessionID)
	ctx = services.WithCollection(ctx, coll.Kind().String())
	logger := logging.WithContext(ctx, b.logger)

	session := collection.NewSession(sessionID, b.src, b.logger)
	if err := session.Open(ctx, coll); err != nil {
		return collection.View{}, err
	}
	if err := b.seek(ctx, session, coll); err != nil {
		return collection.View{}, err
	}
	view, err := session.View()
	if err != nil {
		return collection.View{}, err
	}
	ctx = services.WithPage(ctx, view.PageNum)
	logger.Info("page opened",
		logging.Int(logging.FieldPage, view.PageNum),
		logging.Int("items", len(view.Filenames)),
		logging.String("dir", view.DownloadPath),
		logging.Bool("offline", b.flags.offline != ""),
	)

	if err := b.draw(ctx, coll, view); err != nil {
		return view, err
	}
	return view, nil
}

// seek advances a paged collection to the requested page, loading every
// page on the way; a post jumps to the requested page of the post.
func (b *browser) seek(ctx context.Context, session *collection.Session, coll collection.Collection) error {
	if post, ok := coll.(*collection.Post); ok {
		if b.flags.page == 0 {
			return nil
		}
		return post.Jump(b.flags.page)
	}
	pager, ok := coll.(interface{ Advance() error })
	if !ok {
		return nil
	}
	for range b.flags.page {
		if err := pager.Advance(); err != nil {
			return err
		}
		if err := session.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (b *browser) draw(ctx context.Context, coll collection.Collection, view collection.View) error {
	items := view.Items()
	jobs := make([]pipeline.Job, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, pipeline.Job{Ordinal: item.Ordinal, URL: item.URL, Path: item.Path})
	}

	checker, closeChecker, err := b.checker(ctx)
	if err != nil {
		return err
	}
	defer closeChecker()

	settings := b.cfg.LayoutSettings()
	width, height := b.size()
	opts := pipeline.Options{
		Jobs:        jobs,
		Fetcher:     b.downloader(),
		Checker:     checker,
		WaitTimeout: time.Duration(b.cfg.Pipeline.WaitTimeoutSeconds) * time.Second,
		Out:         b.out,
		Logger:      b.logger,
	}
	if b.flags.external {
		opts.Fetcher = nil
		opts.WatchDir = view.DownloadPath
	}
	if opts.Policy, err = pipeline.ParsePolicy(b.cfg.Pipeline.CompletionPolicy); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "completion policy", "", err)
	}

	if coll.Kind() == collection.KindUsers {
		settings.PageSpacing = b.cfg.UsersPageSpacing()
		grid, err := layout.NewGrid(width, height, settings, b.cfg.Lscat.UsersPrintNameXCoord)
		if err != nil {
			return err
		}
		if b.flags.noRender {
			opts.Grid = grid.WithColumns(settings.GroupSize)
		} else if opts.Grid, err = grid.Grouped(settings.GroupSize); err != nil {
			return services.Wrap(services.ErrRender, "users", "layout", "widen the terminal or lower interleave_group_size", err)
		}
		opts.Order = layout.InterleaveOrder(len(jobs), settings.GroupSize)
		if b.flags.noRender {
			listArtists(b.out, view.Names[:view.SplitPoint])
		} else {
			opts.Labels = artistLabels(view.Names[:view.SplitPoint], b.cfg.Lscat.UsersPrintNameXCoord-1)
		}
		b.recordHidden(coll, view)
	} else {
		grid, err := layout.NewGrid(width, height, settings, 0)
		if err != nil {
			return err
		}
		opts.Grid = grid
	}

	if opts.Renderer, err = b.renderer(); err != nil {
		return err
	}
	if coll.Kind() == collection.KindGallery || coll.Kind() == collection.KindFeed {
		fmt.Fprintln(b.out, layout.ColumnHeader(b.cfg.Lscat.GalleryPrintSpacing, opts.Grid.Cols))
	}

	reg := prometheus.NewRegistry()
	opts.Metrics = pipeline.NewMetrics(reg)
	if listen := b.cfg.Metrics.Listen; listen != "" {
		stop, err := serveMetrics(listen, reg, b.logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	return pipeline.Run(ctx, opts)
}

func (b *browser) checker(ctx context.Context) (staleness.Checker, func(), error) {
	if b.cfg.Pipeline.Staleness != "manifest" {
		return staleness.DirWalk{}, func() {}, nil
	}
	manifest, err := staleness.OpenManifest(ctx, b.cfg.Paths.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	return manifest, func() {
		if err := manifest.Close(); err != nil {
			b.logger.Warn("manifest close failed", logging.Error(err))
		}
	}, nil
}

// renderer draws with the configured command on a terminal and falls back
// to listing items otherwise.
func (b *browser) renderer() (pipeline.Renderer, error) {
	if b.flags.noRender {
		return render.Lister{W: b.out}, nil
	}
	if !term.IsTerminal(b.out) {
		b.logger.Warn("output is not a terminal; listing items instead of drawing them")
		return render.Lister{W: b.out}, nil
	}
	if check := preflight.CheckRenderer(b.cfg.Render.Command); !check.Passed {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "renderer", check.Detail, nil)
	}
	return render.New(b.cfg.Render.Command, b.out)
}

// recordHidden stores how many artist rows on this page have no recent
// works, and therefore leave their grid row short.
func (b *browser) recordHidden(coll collection.Collection, view collection.View) {
	users, ok := coll.(*collection.Users)
	if !ok {
		return
	}
	page, ok := users.Current()
	if !ok {
		return
	}
	hidden := 0
	for _, n := range page.WorkCounts() {
		if n == 0 {
			hidden++
		}
	}
	previous, err := cachedir.ReadOffset(view.DownloadPath)
	if err != nil {
		b.logger.Debug("marker unreadable", logging.Error(err))
	}
	if err := cachedir.WriteOffset(view.DownloadPath, hidden); err != nil {
		b.logger.Warn("marker not written", logging.String("dir", view.DownloadPath), logging.Error(err))
		return
	}
	b.logger.Debug("hidden artist rows", logging.Int("previous", previous), logging.Int("current", hidden))
}

// artistLabels builds the two-line margin label for each artist row: the
// selection number, then the name trimmed to width cells.
func artistLabels(names []string, width int) []string {
	labels := make([]string, 0, len(names))
	for idx, name := range names {
		labels = append(labels, fmt.Sprintf("%02d\n%s", idx+1, text.Trim(textutil.NormalizeName(name), max(width, 1))))
	}
	return labels
}

// listArtists prints the full artist label for each artist on a users
// page, for output that cannot carry the grid margin.
func listArtists(out io.Writer, names []string) {
	for idx, name := range names {
		fmt.Fprintln(out, catalog.ArtistLabel(name, idx+1))
	}
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
