// Package staleness decides which expected files of a download directory
// still need fetching.
//
// Both checkers are best-effort: a file listed as present may have been
// removed since, and a crash between download and Record leaves a file the
// manifest does not know about. DirWalk trusts the directory listing;
// Manifest trusts a SQLite record of completed downloads, which survives
// partially written files that a listing would count as present.
package staleness
