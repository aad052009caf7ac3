// Package catalog decodes raw catalog pages and projects them into the ordered
// lists the rest of koneko works with.
//
// Three record shapes exist: GalleryPage (an artist gallery or the mixed feed
// of followed artists, both a flat illustration array), UserPage (a
// followed-artist listing that embeds a preview of each artist's recent works)
// and IllustDetail (a single post). Each page type implements Page, the small
// capability interface the paginated cache dispatches through.
//
// Raw arrays are decoded into pointer slices; a null entry marks the end of
// the page and stops iteration without error.
package catalog
