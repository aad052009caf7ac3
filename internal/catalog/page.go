package catalog

import (
	"encoding/json"
	"fmt"
)

// Page is the capability interface shared by every collection variant.
type Page interface {
	// Len is the number of items the page carries.
	Len() int
	AllURLs() []string
	AllNames() []string
	// NextToken is the pagination continuation marker; false on the last page.
	NextToken() (string, bool)
}

var (
	_ Page = (*GalleryPage)(nil)
	_ Page = (*UserPage)(nil)
)

// GalleryPage is one page of an artist gallery or of the followed-artist feed.
type GalleryPage struct {
	Illusts []*Illust `json:"illusts"`
	NextURL *string   `json:"next_url"`
}

// DecodeGallery parses a gallery or feed page.
func DecodeGallery(data []byte) (*GalleryPage, error) {
	var page GalleryPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode gallery page: %w", err)
	}
	return &page, nil
}

// Items returns the posts up to the first null entry.
func (p *GalleryPage) Items() []*Illust {
	for idx, illust := range p.Illusts {
		if illust == nil {
			return p.Illusts[:idx]
		}
	}
	return p.Illusts
}

func (p *GalleryPage) Len() int {
	return len(p.Items())
}

// Illust returns the post at index. Indexing past Len panics; callers check
// the count first.
func (p *GalleryPage) Illust(index int) *Illust {
	return p.Items()[index]
}

func (p *GalleryPage) AllURLs() []string {
	items := p.Items()
	urls := make([]string, 0, len(items))
	for _, illust := range items {
		urls = append(urls, illust.URL(SizeSquareMedium))
	}
	return urls
}

func (p *GalleryPage) AllNames() []string {
	items := p.Items()
	names := make([]string, 0, len(items))
	for _, illust := range items {
		names = append(names, illust.Title)
	}
	return names
}

func (p *GalleryPage) NextToken() (string, bool) {
	return nextToken(p.NextURL)
}

// MultiPage describes a post on the page that has more than one image.
type MultiPage struct {
	Index int
	Pages int
}

// MultiPagePosts lists the posts carrying more than one image, in page order.
func (p *GalleryPage) MultiPagePosts() []MultiPage {
	var out []MultiPage
	for idx, illust := range p.Items() {
		if illust.PageCount > 1 {
			out = append(out, MultiPage{Index: idx, Pages: illust.PageCount})
		}
	}
	return out
}

// UserPreview is one followed artist plus a preview of their recent works.
type UserPreview struct {
	User    *User     `json:"user"`
	Illusts []*Illust `json:"illusts"`
}

// UserPage is one page of a followed-artist listing.
type UserPage struct {
	UserPreviews []*UserPreview `json:"user_previews"`
	NextURL      *string        `json:"next_url"`
}

// DecodeUsers parses a followed-artist listing page.
func DecodeUsers(data []byte) (*UserPage, error) {
	var page UserPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode user page: %w", err)
	}
	return &page, nil
}

// Previews returns the listing entries up to the first null entry or entry
// without an artist.
func (p *UserPage) Previews() []*UserPreview {
	for idx, preview := range p.UserPreviews {
		if preview == nil || preview.User == nil {
			return p.UserPreviews[:idx]
		}
	}
	return p.UserPreviews
}

// Len counts artists plus recent-work thumbnails, matching AllURLs.
func (p *UserPage) Len() int {
	return len(p.ProfileURLs()) + len(p.WorkURLs())
}

// ArtistIDs lists the artist ids in listing order.
func (p *UserPage) ArtistIDs() []string {
	previews := p.Previews()
	ids := make([]string, 0, len(previews))
	for _, preview := range previews {
		ids = append(ids, preview.User.IDString())
	}
	return ids
}

// ArtistNames lists the artist display names in listing order.
func (p *UserPage) ArtistNames() []string {
	previews := p.Previews()
	names := make([]string, 0, len(previews))
	for _, preview := range previews {
		names = append(names, preview.User.Name)
	}
	return names
}

// ProfileURLs lists each artist's avatar URL in listing order.
func (p *UserPage) ProfileURLs() []string {
	previews := p.Previews()
	urls := make([]string, 0, len(previews))
	for _, preview := range previews {
		urls = append(urls, preview.User.ProfileImageURLs.Medium)
	}
	return urls
}

// works returns each artist's recent works up to the first entry without
// a thumbnail.
func (p *UserPage) works() [][]*Illust {
	previews := p.Previews()
	out := make([][]*Illust, 0, len(previews))
	for _, preview := range previews {
		n := 0
		for _, illust := range preview.Illusts {
			if illust == nil || illust.URL(SizeSquareMedium) == "" {
				break
			}
			n++
		}
		out = append(out, preview.Illusts[:n])
	}
	return out
}

// WorkURLs flattens every artist's recent-work thumbnails, artist order
// first and preview order second.
func (p *UserPage) WorkURLs() []string {
	var urls []string
	for _, illusts := range p.works() {
		for _, illust := range illusts {
			urls = append(urls, illust.URL(SizeSquareMedium))
		}
	}
	return urls
}

// WorkIDs lists the post ids of the recent works in WorkURLs order.
func (p *UserPage) WorkIDs() []string {
	var ids []string
	for _, illusts := range p.works() {
		for _, illust := range illusts {
			ids = append(ids, illust.IDString())
		}
	}
	return ids
}

// WorkCounts lists how many recent-work thumbnails each artist contributes.
func (p *UserPage) WorkCounts() []int {
	works := p.works()
	counts := make([]int, 0, len(works))
	for _, illusts := range works {
		counts = append(counts, len(illusts))
	}
	return counts
}

// AllURLs is every avatar followed by every recent-work thumbnail.
func (p *UserPage) AllURLs() []string {
	return append(p.ProfileURLs(), p.WorkURLs()...)
}

// AllNames is every artist name followed by one name per recent-work
// thumbnail, synthesized from the thumbnail's filename without extension.
func (p *UserPage) AllNames() []string {
	names := p.ArtistNames()
	for _, url := range p.WorkURLs() {
		names = append(names, Stem(FileName(url)))
	}
	return names
}

// SplitPoint is the number of avatars, where artist names end and
// synthesized work names begin.
func (p *UserPage) SplitPoint() int {
	return len(p.Previews())
}

func (p *UserPage) NextToken() (string, bool) {
	return nextToken(p.NextURL)
}

func nextToken(next *string) (string, bool) {
	if next == nil || *next == "" {
		return "", false
	}
	return *next, true
}
