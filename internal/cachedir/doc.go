// Package cachedir manages the download cache root.
//
// The root holds one directory per browsed collection: numeric artist
// directories for galleries (with an "individual" subdirectory for posts
// opened from them), "following" for followed-user listings and
// "illustfollow" for the feed. Root lists and sizes those directories,
// clears them, and stores the per-directory ".koneko" marker that records
// how many artist rows of a following page are hidden. A file lock keeps
// two koneko processes from downloading into the same root at once.
package cachedir
