package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"koneko/internal/textutil"
)

// ErrNoOrdinal is returned when a filename does not start with a numeric
// ordinal followed by '_'.
var ErrNoOrdinal = errors.New("filename has no leading ordinal")

// FileName returns the last path segment of url.
func FileName(url string) string {
	return textutil.LastSegment(url)
}

// Ext returns the text after the final '.' of name, or name itself when it
// has no dot.
func Ext(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// Stem returns the text before the first '.' of name.
func Stem(name string) string {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// OutputName formats the on-disk name for the item at ordinal.
func OutputName(ordinal int, name, original string) string {
	return fmt.Sprintf("%03d_%s.%s", ordinal, textutil.SanitizeFileName(name), Ext(original))
}

// OutputNames zips urls with names into "{index:03d}_{name}.{ext}" where ext
// comes from each url's filename. Duplicate display names stay distinct
// because the index prefix is unique. Extra entries in the longer input are
// ignored.
func OutputNames(urls, names []string) []string {
	n := min(len(urls), len(names))
	out := make([]string, 0, n)
	for idx := 0; idx < n; idx++ {
		out = append(out, OutputName(idx, names[idx], FileName(urls[idx])))
	}
	return out
}

// OrdinalFromName parses the leading ordinal of a path produced by
// OutputNames.
func OrdinalFromName(path string) (int, error) {
	base := filepath.Base(path)
	head, _, ok := strings.Cut(base, "_")
	if !ok || !textutil.IsDigits(head) {
		return 0, fmt.Errorf("%w: %q", ErrNoOrdinal, base)
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrNoOrdinal, base, err)
	}
	return n, nil
}

var (
	masterSuffix = regexp.MustCompile(`_master\d+`)
	masterPrefix = regexp.MustCompile(`c/\d+x\d+_\d+_\w+/img-master`)
)

// FullURL rewrites a resized master URL to the original-resolution URL.
// Originals may be png; the caller retries with png=true when the jpg
// variant is missing.
func FullURL(url string, png bool) string {
	out := masterSuffix.ReplaceAllString(url, "")
	out = masterPrefix.ReplaceAllString(out, "img-original")
	if png {
		out = strings.ReplaceAll(out, "jpg", "png")
	}
	return out
}

// ArtistLabel formats the two-line-view label printed next to an artist
// avatar: a two-digit selection number, a gap, then the artist name.
func ArtistLabel(name string, number int) string {
	return fmt.Sprintf("%02d%s%s", number, strings.Repeat(" ", 19), name)
}
