package collection

import (
	"context"
	"path/filepath"
	"slices"

	"koneko/internal/catalog"
)

// FollowingDir is the cache directory name used by followed-artist
// listings.
const FollowingDir = "following"

// Users is the paged cache for a followed-artist listing. Besides the raw
// pages it keeps the artist ids and names of every fetched page, since a
// listing page mixes artist identities with previews of their works.
type Users struct {
	pager
	pages       map[int]*catalog.UserPage
	idsByPage   map[int][]string
	namesByPage map[int][]string
}

// NewUsers opens the listing of artists followed by userID, cached under
// base/following/userID.
func NewUsers(base, userID string) *Users {
	return &Users{
		pager:       newPager(KindUsers, userID, filepath.Join(base, FollowingDir, userID)),
		pages:       make(map[int]*catalog.UserPage),
		idsByPage:   make(map[int][]string),
		namesByPage: make(map[int][]string),
	}
}

// Update stores page under the current page number along with its artist
// ids and names. It does not advance.
func (u *Users) Update(page *catalog.UserPage) {
	u.pages[u.PageNum] = page
	u.idsByPage[u.PageNum] = page.ArtistIDs()
	u.namesByPage[u.PageNum] = page.ArtistNames()
}

// Current returns the page cached for the current page number.
func (u *Users) Current() (*catalog.UserPage, bool) {
	page, ok := u.pages[u.PageNum]
	return page, ok
}

// Page implements Collection.
func (u *Users) Page() (catalog.Page, bool) {
	page, ok := u.Current()
	if !ok {
		return nil, false
	}
	return page, true
}

// Cached reports whether pageNum has an entry.
func (u *Users) Cached(pageNum int) bool {
	_, ok := u.pages[pageNum]
	return ok
}

// Invalidate removes every entry recorded for pageNum.
func (u *Users) Invalidate(pageNum int) {
	delete(u.pages, pageNum)
	delete(u.idsByPage, pageNum)
	delete(u.namesByPage, pageNum)
}

// NextToken returns the continuation marker of the current page.
func (u *Users) NextToken() (string, bool) {
	page, ok := u.Current()
	if !ok {
		return "", false
	}
	return page.NextToken()
}

// Names returns the artist names on the current page.
func (u *Users) Names() ([]string, error) {
	names, ok := u.namesByPage[u.PageNum]
	if !ok {
		return nil, ErrNotFetched
	}
	return slices.Clone(names), nil
}

// ProfileURLs returns the artist avatars on the current page.
func (u *Users) ProfileURLs() ([]string, error) {
	page, ok := u.Current()
	if !ok {
		return nil, ErrNotFetched
	}
	return page.ProfileURLs(), nil
}

// WorkURLs returns the recent-work thumbnails on the current page.
func (u *Users) WorkURLs() ([]string, error) {
	page, ok := u.Current()
	if !ok {
		return nil, ErrNotFetched
	}
	return page.WorkURLs(), nil
}

// SplitPoint is the number of avatars on the current page.
func (u *Users) SplitPoint() (int, error) {
	page, ok := u.Current()
	if !ok {
		return 0, ErrNotFetched
	}
	return page.SplitPoint(), nil
}

// ItemID returns the post id of the recent work at index, counted over the
// flattened WorkURLs of the current page. Index must be below the page's
// work count.
func (u *Users) ItemID(index int) (string, error) {
	page, ok := u.Current()
	if !ok {
		return "", ErrNotFetched
	}
	return page.WorkIDs()[index], nil
}

// OwnerID returns the id of the artist at index on the current page.
// Index must be below the page's artist count.
func (u *Users) OwnerID(index int) (string, error) {
	ids, ok := u.idsByPage[u.PageNum]
	if !ok {
		return "", ErrNotFetched
	}
	return ids[index], nil
}

// Load fetches the current page unless it is already cached. On failure
// nothing is stored.
func (u *Users) Load(ctx context.Context, src PageSource) error {
	if u.Cached(u.PageNum) {
		return nil
	}
	data, err := u.fetch(ctx, src)
	if err != nil {
		return err
	}
	page, err := catalog.DecodeUsers(data)
	if err != nil {
		return u.decodeError(err)
	}
	u.Update(page)
	return nil
}

// Refresh drops the current page and fetches it again.
func (u *Users) Refresh(ctx context.Context, src PageSource) error {
	u.Invalidate(u.PageNum)
	return u.Load(ctx, src)
}

// Advance moves to the next page using the current page's continuation
// marker.
func (u *Users) Advance() error {
	if _, ok := u.Current(); !ok {
		return ErrNotFetched
	}
	token, ok := u.NextToken()
	return u.advance(token, ok)
}

// Back moves to the previous page.
func (u *Users) Back() error {
	return u.back()
}

// View implements Collection.
func (u *Users) View() (View, error) {
	page, ok := u.Current()
	if !ok {
		return View{}, ErrNotFetched
	}
	return newView(u.kind, u.PageNum, u.DownloadPath(), page.AllURLs(), page.AllNames(), page.SplitPoint()), nil
}
