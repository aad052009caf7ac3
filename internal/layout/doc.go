// Package layout maps terminal geometry and lscat settings onto the
// thumbnail grid.
//
// Every function here is pure integer arithmetic over primitive values: the
// column and row counts for a terminal, the x/y coordinate of each cell, and
// the artist-interleaved presentation order used by the followed-artist
// view. Grid bundles those values for one geometry so the display stage can
// position an item from its ordinal alone.
package layout
