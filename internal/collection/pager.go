package collection

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"koneko/internal/services"
)

// pager is the page bookkeeping shared by the paged variants.
type pager struct {
	kind     Kind
	id       string
	PageNum  int
	Offset   int
	MainPath string
	// offsets remembers the API offset each visited page was requested at.
	offsets map[int]int
}

func newPager(kind Kind, id, mainPath string) pager {
	return pager{
		kind:     kind,
		id:       id,
		MainPath: mainPath,
		offsets:  map[int]int{0: 0},
	}
}

// Kind reports the collection variant.
func (p *pager) Kind() Kind { return p.kind }

// ID is the artist or user id the collection was opened for.
func (p *pager) ID() string { return p.id }

// DownloadPath is the directory holding the current page's thumbnails.
func (p *pager) DownloadPath() string {
	return filepath.Join(p.MainPath, strconv.Itoa(p.PageNum))
}

func (p *pager) request() Request {
	return Request{Kind: p.kind, ID: p.id, PageNum: p.PageNum, Offset: p.Offset}
}

func (p *pager) advance(token string, ok bool) error {
	if !ok {
		return ErrLastPage
	}
	offset, err := OffsetFromToken(token)
	if err != nil {
		return services.Wrap(services.ErrValidation, p.kind.String(), "advance", "", err)
	}
	p.PageNum++
	p.Offset = offset
	p.offsets[p.PageNum] = offset
	return nil
}

func (p *pager) back() error {
	if p.PageNum == 0 {
		return ErrFirstPage
	}
	p.PageNum--
	p.Offset = p.offsets[p.PageNum]
	return nil
}

func (p *pager) fetch(ctx context.Context, src PageSource) ([]byte, error) {
	data, err := src.FetchPage(ctx, p.request())
	if err != nil {
		return nil, services.Wrap(services.ErrPageFetch, p.kind.String(), "fetch page",
			fmt.Sprintf("page %d offset %d", p.PageNum, p.Offset), err)
	}
	return data, nil
}

func (p *pager) decodeError(err error) error {
	return services.Wrap(services.ErrPageFetch, p.kind.String(), "decode page",
		fmt.Sprintf("page %d", p.PageNum), err)
}
