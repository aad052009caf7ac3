package collection

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Kind identifies a collection variant.
type Kind string

const (
	KindGallery Kind = "gallery"
	KindFeed    Kind = "feed"
	KindUsers   Kind = "following"
	KindPost    Kind = "post"
)

func (k Kind) String() string { return string(k) }

var (
	// ErrNotFetched is the cache miss: the current page has not been loaded.
	ErrNotFetched = errors.New("page not fetched")
	// ErrLastPage is returned when advancing past the final page.
	ErrLastPage = errors.New("no next page")
	// ErrFirstPage is returned when moving back from page zero.
	ErrFirstPage = errors.New("already on first page")
	// ErrPageRange is returned when a post is moved outside its pages.
	ErrPageRange = errors.New("post page out of range")
)

// Request identifies one catalog page to fetch.
type Request struct {
	Kind    Kind
	ID      string
	PageNum int
	Offset  int
}

// PageSource fetches the raw record for one catalog page. A failed fetch
// must leave the caller's cache untouched.
type PageSource interface {
	FetchPage(ctx context.Context, req Request) ([]byte, error)
}

// PageSourceFunc adapts a function to PageSource.
type PageSourceFunc func(ctx context.Context, req Request) ([]byte, error)

func (f PageSourceFunc) FetchPage(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// OffsetFromToken extracts the offset query parameter from a next-page URL.
func OffsetFromToken(token string) (int, error) {
	parsed, err := url.Parse(token)
	if err != nil {
		return 0, fmt.Errorf("parse next url: %w", err)
	}
	raw := parsed.Query().Get("offset")
	if raw == "" {
		return 0, fmt.Errorf("next url %q has no offset", token)
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("next url offset %q: %w", raw, err)
	}
	return offset, nil
}
