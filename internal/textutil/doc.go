// Package textutil holds small string helpers shared by the catalog model and
// the cache directory code: filename sanitizing, Unicode normalization of
// display names, and URL path segment extraction.
package textutil
