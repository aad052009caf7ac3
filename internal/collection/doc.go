// Package collection holds the paginated content cache for each browsing
// mode.
//
// A collection owns its page number, API offset, and the raw catalog pages
// fetched so far, keyed by page number. Pages are fetched once through a
// PageSource and reused until explicitly invalidated. Gallery, Feed, and
// Users cover the three paged catalog variants; Post models a single
// (possibly multi-page) illustration.
//
// Session is the single owner of the active collection. Collaborators such
// as the download pipeline receive View snapshots with copied slices and
// never hold a reference to mutable collection state.
package collection
