package catalog_test

import (
	"errors"
	"regexp"
	"testing"

	"koneko/internal/catalog"
)

func TestOutputNames(t *testing.T) {
	urls := []string{
		"https://i.pximg.net/a/pic1.png",
		"https://i.pximg.net/a/pic2.png",
		"https://i.pximg.net/a/pic3.png",
	}
	names := []string{"pic1", "pic2", "pic3"}
	got := catalog.OutputNames(urls, names)
	want := []string{"000_pic1.png", "001_pic2.png", "002_pic3.png"}
	if len(got) != len(want) {
		t.Fatalf("OutputNames = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("OutputNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOutputNamesFromGallery(t *testing.T) {
	page, err := catalog.DecodeGallery(readFixture(t, "gallery.json"))
	if err != nil {
		t.Fatalf("DecodeGallery: %v", err)
	}
	pattern := regexp.MustCompile(`^\d{3}_.+\.\w+$`)
	names := catalog.OutputNames(page.AllURLs(), page.AllNames())
	seen := make(map[string]bool)
	for idx, name := range names {
		if !pattern.MatchString(name) {
			t.Fatalf("name %q does not match output pattern", name)
		}
		ordinal, err := catalog.OrdinalFromName(name)
		if err != nil || ordinal != idx {
			t.Fatalf("OrdinalFromName(%q) = %d, %v; want %d", name, ordinal, err, idx)
		}
		if seen[name] {
			t.Fatalf("duplicate output name %q", name)
		}
		seen[name] = true
	}
	if names[2] != "002_53.png" {
		t.Fatalf("slash in title should be dropped, got %q", names[2])
	}
}

func TestOutputNamesTruncatesToShorter(t *testing.T) {
	got := catalog.OutputNames([]string{"a/x.jpg", "a/y.jpg"}, []string{"x"})
	if len(got) != 1 || got[0] != "000_x.jpg" {
		t.Fatalf("OutputNames = %v", got)
	}
}

func TestOrdinalFromName(t *testing.T) {
	cases := map[string]int{
		"000_a.jpg":            0,
		"/tmp/cache/017_b.png": 17,
		"123_x_y.jpg":          123,
	}
	for input, want := range cases {
		got, err := catalog.OrdinalFromName(input)
		if err != nil || got != want {
			t.Fatalf("OrdinalFromName(%q) = %d, %v; want %d", input, got, err, want)
		}
	}
	for _, bad := range []string{"abc.jpg", "x1_a.jpg", ".koneko", "_a.jpg"} {
		if _, err := catalog.OrdinalFromName(bad); !errors.Is(err, catalog.ErrNoOrdinal) {
			t.Fatalf("OrdinalFromName(%q) err = %v, want ErrNoOrdinal", bad, err)
		}
	}
}

func TestFullURL(t *testing.T) {
	in := "https://i.pximg.net/c/540x540_70/img-master/img/2019/09/09/04/32/38/76695217_p0_master1200.jpg"
	want := "https://i.pximg.net/c/540x540_70/img-master/img/2019/09/09/04/32/38/76695217_p0.jpg"
	if got := catalog.FullURL(in, false); got != want {
		t.Fatalf("FullURL = %q, want %q", got, want)
	}

	webp := "https://i.pximg.net/c/600x1200_90_webp/img-master/img/2019/09/09/04/32/38/76695217_p0_master1200.jpg"
	wantPNG := "https://i.pximg.net/img-original/img/2019/09/09/04/32/38/76695217_p0.png"
	if got := catalog.FullURL(webp, true); got != wantPNG {
		t.Fatalf("FullURL png = %q, want %q", got, wantPNG)
	}
}

func TestFileNameHelpers(t *testing.T) {
	name := catalog.FileName("https://i.pximg.net/a/b/76695217_p0_square1200.jpg")
	if name != "76695217_p0_square1200.jpg" {
		t.Fatalf("FileName = %q", name)
	}
	if catalog.Ext(name) != "jpg" || catalog.Stem(name) != "76695217_p0_square1200" {
		t.Fatalf("Ext/Stem = %q/%q", catalog.Ext(name), catalog.Stem(name))
	}
}

func TestArtistLabel(t *testing.T) {
	if got := catalog.ArtistLabel("raika9", 3); got != "03                   raika9" {
		t.Fatalf("ArtistLabel = %q", got)
	}
}
