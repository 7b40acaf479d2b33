package scan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/lakshaymaurya-felt/junkmole/internal/remove"
	"github.com/lakshaymaurya-felt/junkmole/internal/rules"
)

// State is the walker's lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StateTraversing
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTraversing:
		return "traversing"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Walker traverses a directory tree, classifies each entry, and hands
// matched actions to a dispatch callback. Traversal is single-threaded;
// only deletion is parallelized downstream.
type Walker struct {
	root       string
	recursive  bool
	excludeGit bool
	set        *rules.Set
	attrRules  bool

	state   atomic.Int32
	visited atomic.Int64

	mu       sync.Mutex
	warnings []string
}

// NewWalker creates a walker rooted at root. With recursive false only
// the top level is processed.
func NewWalker(root string, recursive, excludeGit bool, set *rules.Set) *Walker {
	attrRules := false
	for _, r := range set.Rules() {
		if r.Match == rules.MatchAttr {
			attrRules = true
			break
		}
	}
	return &Walker{
		root:       filepath.Clean(root),
		recursive:  recursive,
		excludeGit: excludeGit,
		set:        set,
		attrRules:  attrRules,
	}
}

// State returns the current lifecycle phase.
func (w *Walker) State() State {
	return State(w.state.Load())
}

// Finish marks the drain complete. The coordinator calls this once the
// worker pool has produced an outcome for every dispatched action.
func (w *Walker) Finish() {
	w.state.Store(int32(StateDone))
}

// Visited returns the number of entries examined so far.
func (w *Walker) Visited() int64 {
	return w.visited.Load()
}

// Warnings returns any non-fatal oddities hit during traversal.
func (w *Walker) Warnings() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.warnings...)
}

func (w *Walker) addWarning(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.warnings) < 500 {
		w.warnings = append(w.warnings, msg)
	}
}

// Walk enumerates the tree, dispatching one action per matched entry and
// reporting unreadable directories through fail. It returns ctx.Err()
// when interrupted, nil otherwise; either way the walker ends in
// Draining so the caller can drain the pool and call Finish.
//
// Edge cases follow the traversal contract: a directory that vanishes
// mid-walk contributes zero entries, a permission-denied directory is
// failed and its siblings continue, and matched junk directories are
// dispatched whole and never descended into.
func (w *Walker) Walk(ctx context.Context, dispatch func(remove.Action), fail func(path string, err error)) error {
	w.state.Store(int32(StateTraversing))
	defer w.state.Store(int32(StateDraining))

	pending := []string{w.root}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := pending[0]
		pending = pending[1:]

		entries, err := os.ReadDir(dir)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			// Vanished between discovery and listing. Zero entries.
			continue
		default:
			fail(dir, err)
			continue
		}

		for _, de := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			w.visited.Add(1)

			e, ok := w.snapshot(dir, de)
			if !ok {
				continue
			}

			if action, matched := Classify(e, w.set); matched {
				dispatch(action)
				// A matched directory is removed whole downstream;
				// descending into it would race the deletion.
				continue
			}

			if e.IsDir && w.recursive {
				if w.excludeGit && e.Name == ".git" {
					continue
				}
				pending = append(pending, e.Path)
			}
		}
	}
	return nil
}

// snapshot builds the read-only Entry for one directory entry. Entries
// that vanish or refuse a stat between listing and inspection are
// skipped with a warning, not failed.
func (w *Walker) snapshot(dir string, de os.DirEntry) (Entry, bool) {
	path := filepath.Join(dir, de.Name())
	symlink := de.Type()&fs.ModeSymlink != 0

	info, err := de.Info()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.addWarning("cannot stat " + path + ": " + err.Error())
		}
		return Entry{}, false
	}

	e := Entry{
		Path:    path,
		Name:    de.Name(),
		IsDir:   de.IsDir(),
		Symlink: symlink,
		ModTime: info.ModTime(),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}

	// Attribute detection is only meaningful for regular files, and we
	// never resolve a symlink just to read its target's attributes.
	if !e.IsDir && !symlink && w.attrRules {
		e.Attrs = remove.ListAttrs(path)
	}
	return e, true
}
