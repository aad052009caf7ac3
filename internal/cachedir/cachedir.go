package cachedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"koneko/internal/collection"
	"koneko/internal/fileutil"
	"koneko/internal/staleness"
	"koneko/internal/textutil"
)

// LockFile is created in the cache root while a process holds it.
const LockFile = ".lock"

// ErrLocked is returned when another process already holds the cache root.
var ErrLocked = errors.New("cache root is locked by another koneko process")

// Root is a cache root directory.
type Root struct {
	path string
	lock *flock.Flock
}

// Entry summarizes one top-level collection directory.
type Entry struct {
	Name       string
	Kind       collection.Kind
	SizeBytes  int64
	Files      int
	ModifiedAt time.Time
}

// New returns a Root at path. The directory is created on Lock.
func New(path string) *Root {
	return &Root{path: path, lock: flock.New(filepath.Join(path, LockFile))}
}

// Path returns the cache root directory.
func (r *Root) Path() string { return r.path }

// Lock takes the cache-root lock without blocking.
func (r *Root) Lock() error {
	if err := os.MkdirAll(r.path, 0o755); err != nil {
		return fmt.Errorf("cachedir: create root: %w", err)
	}
	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("cachedir: acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Unlock releases the cache-root lock.
func (r *Root) Unlock() error {
	return r.lock.Unlock()
}

// KindOf classifies a top-level directory name. Numeric artist directories
// are galleries.
func KindOf(name string) (collection.Kind, bool) {
	switch {
	case textutil.IsDigits(name):
		return collection.KindGallery, true
	case name == collection.FollowingDir:
		return collection.KindUsers, true
	case name == collection.FeedDir:
		return collection.KindFeed, true
	default:
		return "", false
	}
}

// Collections lists top-level directory names that hold the given kinds,
// sorted. No kinds means all. KindPost selects artist directories that
// contain individually opened posts.
func (r *Root) Collections(kinds ...collection.Kind) ([]string, error) {
	entries, err := os.ReadDir(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cachedir: list root: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		kind, ok := KindOf(name)
		if !ok {
			continue
		}
		if len(kinds) == 0 || slices.Contains(kinds, kind) {
			out = append(out, name)
			continue
		}
		if kind == collection.KindGallery && slices.Contains(kinds, collection.KindPost) && r.hasIndividual(name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// IndividualOwners lists artist directories that contain individually
// opened posts.
func (r *Root) IndividualOwners() ([]string, error) {
	return r.Collections(collection.KindPost)
}

func (r *Root) hasIndividual(name string) bool {
	info, err := os.Stat(filepath.Join(r.path, name, collection.IndividualDir))
	return err == nil && info.IsDir()
}

// Entries returns size summaries for the collections selected by kinds.
func (r *Root) Entries(kinds ...collection.Kind) ([]Entry, error) {
	names, err := r.Collections(kinds...)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		dir := filepath.Join(r.path, name)
		size, files, err := fileutil.DirSize(dir)
		if err != nil {
			return nil, fmt.Errorf("cachedir: size %s: %w", name, err)
		}
		entry := Entry{Name: name, SizeBytes: size, Files: files}
		entry.Kind, _ = KindOf(name)
		if info, err := os.Stat(dir); err == nil {
			entry.ModifiedAt = info.ModTime()
		}
		out = append(out, entry)
	}
	return out, nil
}

// Size returns the total bytes and file count under the root.
func (r *Root) Size() (int64, int, error) {
	return fileutil.DirSize(r.path)
}

// Remove deletes dir, which must lie inside the root. A missing dir is not
// an error.
func (r *Root) Remove(dir string) error {
	rel, err := filepath.Rel(r.path, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("cachedir: %q is not inside %q", dir, r.path)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("cachedir: remove %s: %w", rel, err)
	}
	return nil
}

// Clear removes everything under the root except the lock file.
func (r *Root) Clear() error {
	entries, err := os.ReadDir(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cachedir: list root: %w", err)
	}
	for _, entry := range entries {
		if entry.Name() == LockFile {
			continue
		}
		if err := os.RemoveAll(filepath.Join(r.path, entry.Name())); err != nil {
			return fmt.Errorf("cachedir: clear %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// ReadOffset reads the hidden-row count stored in dir's marker file. A
// missing marker reads as zero.
func ReadOffset(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, staleness.MarkerFile))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cachedir: read marker: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("cachedir: marker in %s: %w", dir, err)
	}
	return n, nil
}

// WriteOffset stores n in dir's marker file.
func WriteOffset(dir string, n int) error {
	if _, err := fileutil.WriteAtomic(filepath.Join(dir, staleness.MarkerFile), strings.NewReader(strconv.Itoa(n))); err != nil {
		return fmt.Errorf("cachedir: write marker: %w", err)
	}
	return nil
}
