package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "",
	"\\", "",
	"\x00", "",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

// SanitizeFileName makes a display name usable as a single path element.
// Path separators are dropped rather than replaced so titles such as "5/3"
// keep their digits together, and the result is NFC-normalized so names
// compare equal to directory listings on filesystems that decompose.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(NormalizeName(fileNameReplacer.Replace(name)))
}

// NormalizeName returns the NFC form of s.
func NormalizeName(s string) string {
	return norm.NFC.String(s)
}

// IsDigits reports whether s is non-empty and consists only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LastSegment returns the text after the final '/' in s.
func LastSegment(s string) string {
	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
