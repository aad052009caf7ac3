package collection

import (
	"context"
	"fmt"
	"path/filepath"

	"koneko/internal/catalog"
	"koneko/internal/services"
)

// IndividualDir is the per-artist directory holding single-post downloads.
const IndividualDir = "individual"

// Post is a single illustration, possibly spanning several pages.
// PageNum always lies in [0, PageCount()).
type Post struct {
	ItemID       string
	OwnerID      string
	PageNum      int
	PageURLs     []string
	DownloadPath string
}

// NewPost builds the post for detail, cached under
// base/owner/individual, plus /item for multi-page posts.
func NewPost(base string, detail *catalog.IllustDetail) (*Post, error) {
	if detail == nil || detail.Illust == nil {
		return nil, services.Wrap(services.ErrValidation, KindPost.String(), "new post", "missing illust", nil)
	}
	illust := detail.Illust
	urls := illust.PageURLs(catalog.SizeLarge)
	if len(urls) == 0 || urls[0] == "" {
		return nil, services.Wrap(services.ErrValidation, KindPost.String(), "new post",
			fmt.Sprintf("illust %d has no pages", illust.ID), nil)
	}
	post := &Post{
		ItemID:       illust.IDString(),
		OwnerID:      illust.User.IDString(),
		PageURLs:     urls,
		DownloadPath: filepath.Join(base, illust.User.IDString(), IndividualDir),
	}
	if post.PageCount() != 1 {
		post.DownloadPath = filepath.Join(post.DownloadPath, post.ItemID)
	}
	return post, nil
}

// LoadPost fetches and builds the post with id itemID.
func LoadPost(ctx context.Context, src PageSource, base, itemID string) (*Post, error) {
	data, err := src.FetchPage(ctx, Request{Kind: KindPost, ID: itemID})
	if err != nil {
		return nil, services.Wrap(services.ErrPageFetch, KindPost.String(), "fetch post", itemID, err)
	}
	detail, err := catalog.DecodeDetail(data)
	if err != nil {
		return nil, services.Wrap(services.ErrPageFetch, KindPost.String(), "decode post", itemID, err)
	}
	return NewPost(base, detail)
}

// Kind implements Collection.
func (p *Post) Kind() Kind { return KindPost }

// PageCount is the number of images in the post.
func (p *Post) PageCount() int { return len(p.PageURLs) }

// CurrentURL is the URL of the page being viewed.
func (p *Post) CurrentURL() string { return p.PageURLs[p.PageNum] }

// NextURL is the URL of the page after the current one.
func (p *Post) NextURL() (string, error) {
	if p.PageNum+1 >= p.PageCount() {
		return "", ErrPageRange
	}
	return p.PageURLs[p.PageNum+1], nil
}

// Filename is the filename of the current page.
func (p *Post) Filename() string { return catalog.FileName(p.CurrentURL()) }

// Filepath is where the current page is stored.
func (p *Post) Filepath() string { return filepath.Join(p.DownloadPath, p.Filename()) }

// LargeFilename is the filename of the first page.
func (p *Post) LargeFilename() string { return catalog.FileName(p.PageURLs[0]) }

// Next moves to the next page.
func (p *Post) Next() error { return p.Jump(p.PageNum + 1) }

// Prev moves to the previous page.
func (p *Post) Prev() error { return p.Jump(p.PageNum - 1) }

// Jump moves to page n.
func (p *Post) Jump(n int) error {
	if n < 0 || n >= p.PageCount() {
		return fmt.Errorf("%w: page %d of %d", ErrPageRange, n, p.PageCount())
	}
	p.PageNum = n
	return nil
}

// Load implements Collection. A post is complete once built.
func (p *Post) Load(context.Context, PageSource) error { return nil }

// View implements Collection. Every page of the post is an item, named
// after its filename stem.
func (p *Post) View() (View, error) {
	names := make([]string, 0, len(p.PageURLs))
	for _, url := range p.PageURLs {
		names = append(names, catalog.Stem(catalog.FileName(url)))
	}
	return newView(KindPost, p.PageNum, p.DownloadPath, p.PageURLs, names, 0), nil
}
