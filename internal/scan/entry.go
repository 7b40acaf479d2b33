// Package scan walks a directory tree and classifies entries against a
// rule set. The walker only ever reads filesystem structure; removal is
// delegated entirely to the dispatch callback so traversal correctness
// never depends on deletions completing synchronously.
package scan

import "time"

// Entry is a read-only snapshot of one filesystem entry at visit time.
// It lives only within the walk step that produced it; anything acting
// on the path later must tolerate the filesystem having changed.
type Entry struct {
	// Path is the full path to the entry.
	Path string

	// Name is the base name.
	Name string

	// IsDir reports whether the entry itself is a directory
	// (symlinks to directories are not directories here).
	IsDir bool

	// Symlink reports whether the entry is a symbolic link.
	Symlink bool

	// Size is the entry's size in bytes, 0 for directories.
	Size int64

	// ModTime is the last modification time.
	ModTime time.Time

	// Attrs are the extended attribute names detected on the entry,
	// nil when none or when the platform has no attribute support.
	Attrs []string
}
