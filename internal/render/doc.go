// Package render draws thumbnails by running an external image display
// command once per item.
package render
