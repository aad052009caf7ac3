// Package pipeline downloads a page of thumbnails and displays them in
// catalog order.
//
// Three stages run concurrently and talk only through channels. The
// producer fetches jobs one at a time and reports each completion; the
// sequencer is a reorder buffer that releases completed paths strictly in
// ordinal order; the display stage positions each released path on the
// grid and hands it to the renderer. Downloads may finish in any order, yet
// the display never sees ordinal n+1 before ordinal n.
//
// What happens to ordinals that fail or never arrive is set by Policy.
package pipeline
