package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Size selects one of the renditions listed under image_urls.
type Size string

const (
	SizeSquareMedium Size = "square_medium"
	SizeMedium       Size = "medium"
	SizeLarge        Size = "large"
	SizeOriginal     Size = "original"
)

// ImageURLs lists the renditions of one image.
type ImageURLs struct {
	SquareMedium string `json:"square_medium"`
	Medium       string `json:"medium"`
	Large        string `json:"large"`
	Original     string `json:"original"`
}

// Get returns the URL for size, or "" when the rendition is absent.
func (u ImageURLs) Get(size Size) string {
	switch size {
	case SizeSquareMedium:
		return u.SquareMedium
	case SizeMedium:
		return u.Medium
	case SizeLarge:
		return u.Large
	case SizeOriginal:
		return u.Original
	default:
		return ""
	}
}

// ProfileImageURLs lists the renditions of an artist avatar.
type ProfileImageURLs struct {
	Medium string `json:"medium"`
}

// User is an artist as embedded in illustration and listing records.
type User struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Account          string           `json:"account"`
	ProfileImageURLs ProfileImageURLs `json:"profile_image_urls"`
	IsFollowed       bool             `json:"is_followed"`
}

// IDString formats the numeric user id.
func (u *User) IDString() string {
	return strconv.FormatInt(u.ID, 10)
}

// MetaPage is one page of a multi-page post.
type MetaPage struct {
	ImageURLs ImageURLs `json:"image_urls"`
}

// MetaSinglePage carries the original URL of a single-page post.
type MetaSinglePage struct {
	OriginalImageURL string `json:"original_image_url"`
}

// Illust is one post.
type Illust struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	ImageURLs      ImageURLs      `json:"image_urls"`
	Caption        string         `json:"caption"`
	User           User           `json:"user"`
	PageCount      int            `json:"page_count"`
	MetaSinglePage MetaSinglePage `json:"meta_single_page"`
	MetaPages      []MetaPage     `json:"meta_pages"`
	TotalBookmarks int            `json:"total_bookmarks"`
}

// IDString formats the numeric post id.
func (i *Illust) IDString() string {
	return strconv.FormatInt(i.ID, 10)
}

// URL returns the post's first-page URL at size.
func (i *Illust) URL(size Size) string {
	return i.ImageURLs.Get(size)
}

// PageURLs returns one URL per page of the post at size. Single-page posts
// yield their own URL; multi-page posts read meta_pages and stop early if the
// record lists fewer pages than page_count claims.
func (i *Illust) PageURLs(size Size) []string {
	if i.PageCount <= 1 {
		return []string{i.URL(size)}
	}
	urls := make([]string, 0, i.PageCount)
	for idx := 0; idx < i.PageCount && idx < len(i.MetaPages); idx++ {
		urls = append(urls, i.MetaPages[idx].ImageURLs.Get(size))
	}
	return urls
}

// IllustDetail is the record returned for a single post.
type IllustDetail struct {
	Illust *Illust `json:"illust"`
}

// DecodeDetail parses a single-post record.
func DecodeDetail(data []byte) (*IllustDetail, error) {
	var detail IllustDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("decode illust detail: %w", err)
	}
	if detail.Illust == nil {
		return nil, fmt.Errorf("decode illust detail: missing illust")
	}
	return &detail, nil
}
