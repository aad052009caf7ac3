package collection_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"koneko/internal/collection"
	"koneko/internal/services"
)

type fakeSource struct {
	pages map[string]string
	calls []collection.Request
	err   error
}

func (f *fakeSource) FetchPage(_ context.Context, req collection.Request) ([]byte, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	key := fmt.Sprintf("%s/%s/%d", req.Kind, req.ID, req.Offset)
	body, ok := f.pages[key]
	if !ok {
		return nil, fmt.Errorf("no page %s", key)
	}
	return []byte(body), nil
}

func galleryJSON(ids []int, next string) string {
	var items []string
	for _, id := range ids {
		items = append(items, fmt.Sprintf(`{"id":%d,"title":"t%d","image_urls":{"square_medium":"https://i.pximg.net/x/%d_p0_square1200.jpg"},"user":{"id":2232374,"name":"raika9"},"page_count":1}`, id, id, id))
	}
	nextURL := "null"
	if next != "" {
		nextURL = fmt.Sprintf("%q", next)
	}
	return fmt.Sprintf(`{"illusts":[%s],"next_url":%s}`, strings.Join(items, ","), nextURL)
}

func TestGalleryLifecycle(t *testing.T) {
	base := t.TempDir()
	g := collection.NewGallery(base, "2232374")
	if g.PageNum != 0 || g.Offset != 0 {
		t.Fatalf("new gallery at page %d offset %d", g.PageNum, g.Offset)
	}
	if _, ok := g.Current(); ok {
		t.Fatal("expected empty cache")
	}
	if _, err := g.ItemID(0); !errors.Is(err, collection.ErrNotFetched) {
		t.Fatalf("ItemID before load err = %v", err)
	}
	if got, want := g.DownloadPath(), filepath.Join(base, "2232374", "0"); got != want {
		t.Fatalf("DownloadPath = %q, want %q", got, want)
	}

	src := &fakeSource{pages: map[string]string{
		"gallery/2232374/0":  galleryJSON([]int{10, 11, 12}, "https://app-api.pixiv.net/v1/user/illusts?user_id=2232374&type=illust&offset=30"),
		"gallery/2232374/30": galleryJSON([]int{20}, ""),
	}}
	ctx := context.Background()
	if err := g.Load(ctx, src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := g.Load(ctx, src); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if len(src.calls) != 1 {
		t.Fatalf("cached page refetched: %d calls", len(src.calls))
	}
	id, err := g.ItemID(2)
	if err != nil || id != "12" {
		t.Fatalf("ItemID(2) = %q, %v", id, err)
	}
	owner, err := g.OwnerID(0)
	if err != nil || owner != "2232374" {
		t.Fatalf("OwnerID(0) = %q, %v", owner, err)
	}

	if err := g.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if g.PageNum != 1 || g.Offset != 30 {
		t.Fatalf("after Advance page %d offset %d", g.PageNum, g.Offset)
	}
	if err := g.Load(ctx, src); err != nil {
		t.Fatalf("Load page 1: %v", err)
	}
	if _, ok := g.NextToken(); ok {
		t.Fatal("expected last page")
	}
	if err := g.Advance(); !errors.Is(err, collection.ErrLastPage) {
		t.Fatalf("Advance past last err = %v", err)
	}
	if err := g.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if g.PageNum != 0 || g.Offset != 0 {
		t.Fatalf("after Back page %d offset %d", g.PageNum, g.Offset)
	}
	if err := g.Back(); !errors.Is(err, collection.ErrFirstPage) {
		t.Fatalf("Back past first err = %v", err)
	}
	if len(src.calls) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(src.calls))
	}

	if err := g.Refresh(ctx, src); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(src.calls) != 3 {
		t.Fatalf("Refresh should refetch, got %d calls", len(src.calls))
	}
}

func TestGalleryIndexPastEndPanics(t *testing.T) {
	g := collection.NewGallery(t.TempDir(), "1")
	src := &fakeSource{pages: map[string]string{"gallery/1/0": galleryJSON([]int{1, 2}, "")}}
	if err := g.Load(context.Background(), src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for index past page length")
		}
	}()
	_, _ = g.OwnerID(2)
}

func TestLoadFailureLeavesCacheEmpty(t *testing.T) {
	g := collection.NewGallery(t.TempDir(), "1")
	src := &fakeSource{err: errors.New("503")}
	err := g.Load(context.Background(), src)
	if !errors.Is(err, services.ErrPageFetch) {
		t.Fatalf("Load err = %v, want ErrPageFetch", err)
	}
	if _, ok := g.Current(); ok {
		t.Fatal("failed fetch must not insert a page")
	}

	src = &fakeSource{pages: map[string]string{"gallery/1/0": "{not json"}}
	if err := g.Load(context.Background(), src); !errors.Is(err, services.ErrPageFetch) {
		t.Fatalf("decode failure err = %v", err)
	}
	if _, ok := g.Current(); ok {
		t.Fatal("undecodable page must not be inserted")
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	g := collection.NewGallery(t.TempDir(), "1")
	src := &fakeSource{pages: map[string]string{"gallery/1/0": galleryJSON([]int{1, 2, 3}, "")}}
	if err := g.Load(context.Background(), src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	page, _ := g.Current()
	before, err := g.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	g.Update(page)
	g.Update(page)
	after, err := g.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if !slices.Equal(before.URLs, after.URLs) || !slices.Equal(before.Names, after.Names) {
		t.Fatalf("Update changed projections: %v/%v vs %v/%v", before.URLs, before.Names, after.URLs, after.Names)
	}
}

func TestFeedPaths(t *testing.T) {
	base := t.TempDir()
	f := collection.NewFeed(base)
	if f.Kind() != collection.KindFeed {
		t.Fatalf("Kind = %q", f.Kind())
	}
	src := &fakeSource{pages: map[string]string{"feed//0": galleryJSON([]int{5}, "")}}
	if err := f.Load(context.Background(), src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	view, err := f.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if want := filepath.Join(base, collection.FeedDir, "0"); view.DownloadPath != want {
		t.Fatalf("DownloadPath = %q, want %q", view.DownloadPath, want)
	}
	if view.Filenames[0] != "000_t5.jpg" {
		t.Fatalf("Filenames = %v", view.Filenames)
	}
}

func TestOffsetFromToken(t *testing.T) {
	got, err := collection.OffsetFromToken("https://app-api.pixiv.net/v1/user/following?user_id=1&restrict=private&offset=60")
	if err != nil || got != 60 {
		t.Fatalf("OffsetFromToken = %d, %v", got, err)
	}
	if _, err := collection.OffsetFromToken("https://app-api.pixiv.net/v1/user/following?user_id=1"); err == nil {
		t.Fatal("expected error for token without offset")
	}
}
