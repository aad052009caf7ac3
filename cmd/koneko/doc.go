// Package main hosts the koneko CLI entrypoint and command graph.
//
// Browse commands (gallery, feed, following, post) open a collection in a
// session, snapshot its current page, and hand the items to the download
// reassembly pipeline, which draws them on the terminal grid in catalog
// order. The remaining commands inspect layout geometry, manage the
// download cache, scaffold configuration and run readiness checks.
//
// Keep this package thin: behaviour lives in the internal packages and is
// surfaced here through flags and output formatting.
package main
