package collection

import (
	"context"
	"path/filepath"

	"koneko/internal/catalog"
)

// Gallery is the paged cache for one artist's illustrations.
type Gallery struct {
	pager
	pages map[int]*catalog.GalleryPage
}

// NewGallery opens the gallery of artistID, cached under base/artistID.
func NewGallery(base, artistID string) *Gallery {
	return &Gallery{
		pager: newPager(KindGallery, artistID, filepath.Join(base, artistID)),
		pages: make(map[int]*catalog.GalleryPage),
	}
}

// Update stores page under the current page number, replacing any entry
// already there. It does not advance.
func (g *Gallery) Update(page *catalog.GalleryPage) {
	g.pages[g.PageNum] = page
}

// Current returns the page cached for the current page number.
func (g *Gallery) Current() (*catalog.GalleryPage, bool) {
	page, ok := g.pages[g.PageNum]
	return page, ok
}

// Page implements Collection.
func (g *Gallery) Page() (catalog.Page, bool) {
	page, ok := g.Current()
	if !ok {
		return nil, false
	}
	return page, true
}

// Cached reports whether pageNum has an entry.
func (g *Gallery) Cached(pageNum int) bool {
	_, ok := g.pages[pageNum]
	return ok
}

// Invalidate removes the entry for pageNum so the next Load refetches it.
func (g *Gallery) Invalidate(pageNum int) {
	delete(g.pages, pageNum)
}

// NextToken returns the continuation marker of the current page.
func (g *Gallery) NextToken() (string, bool) {
	page, ok := g.Current()
	if !ok {
		return "", false
	}
	return page.NextToken()
}

// ItemID returns the post id at index on the current page. Index must be
// below the page's Len.
func (g *Gallery) ItemID(index int) (string, error) {
	page, ok := g.Current()
	if !ok {
		return "", ErrNotFetched
	}
	return page.Illust(index).IDString(), nil
}

// OwnerID returns the artist id of the post at index on the current page.
// Index must be below the page's Len.
func (g *Gallery) OwnerID(index int) (string, error) {
	page, ok := g.Current()
	if !ok {
		return "", ErrNotFetched
	}
	return page.Illust(index).User.IDString(), nil
}

// Load fetches the current page unless it is already cached. On failure
// nothing is stored.
func (g *Gallery) Load(ctx context.Context, src PageSource) error {
	if g.Cached(g.PageNum) {
		return nil
	}
	data, err := g.fetch(ctx, src)
	if err != nil {
		return err
	}
	page, err := catalog.DecodeGallery(data)
	if err != nil {
		return g.decodeError(err)
	}
	g.Update(page)
	return nil
}

// Refresh drops the current page and fetches it again.
func (g *Gallery) Refresh(ctx context.Context, src PageSource) error {
	g.Invalidate(g.PageNum)
	return g.Load(ctx, src)
}

// Advance moves to the next page using the current page's continuation
// marker.
func (g *Gallery) Advance() error {
	if _, ok := g.Current(); !ok {
		return ErrNotFetched
	}
	token, ok := g.NextToken()
	return g.advance(token, ok)
}

// Back moves to the previous page.
func (g *Gallery) Back() error {
	return g.back()
}

// View implements Collection.
func (g *Gallery) View() (View, error) {
	page, ok := g.Current()
	if !ok {
		return View{}, ErrNotFetched
	}
	return newView(g.kind, g.PageNum, g.DownloadPath(), page.AllURLs(), page.AllNames(), 0), nil
}

// Feed is the paged cache for the newest illustrations of followed
// artists. Its pages share the gallery record shape.
type Feed struct {
	Gallery
}

// FeedDir is the cache directory name used by the feed.
const FeedDir = "illustfollow"

// NewFeed opens the followed-artist feed, cached under base/illustfollow.
func NewFeed(base string) *Feed {
	return &Feed{Gallery: Gallery{
		pager: newPager(KindFeed, "", filepath.Join(base, FeedDir)),
		pages: make(map[int]*catalog.GalleryPage),
	}}
}
