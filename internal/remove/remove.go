package remove

import (
	"errors"
	"io/fs"
	"os"

	"github.com/lakshaymaurya-felt/junkmole/internal/rules"
)

// Reasons recorded on Skipped outcomes.
const (
	reasonNotFound    = "not found"
	reasonAttrAbsent  = "attribute absent"
	reasonUnsupported = "attributes unsupported on this platform"
)

// Deleter executes removal actions. In dry-run mode no mutating call is
// made and every action reports Planned.
type Deleter struct {
	DryRun bool
}

// Execute runs one action and returns its Outcome. It never panics and
// never returns an error: permission and I/O failures become Failed
// outcomes so a single bad path cannot take down a worker.
func (d Deleter) Execute(a Action) Outcome {
	if d.DryRun {
		return a.outcome(Planned, "")
	}

	switch a.Kind {
	case rules.ActionDeleteFile, rules.ActionDeleteStream:
		return a.outcome(d.remove(a))
	case rules.ActionStripAttribute:
		return a.outcome(d.strip(a))
	default:
		return a.outcome(Failed, "unknown action kind "+string(a.Kind))
	}
}

// remove deletes the target. Junk-named directories are removed whole;
// plain files and stream markers with a single unlink that never follows
// symlinks.
func (d Deleter) remove(a Action) (Result, string) {
	var err error
	if a.IsDir {
		// RemoveAll on a vanished path returns nil, so probe first to
		// keep the not-found policy uniform.
		if _, statErr := os.Lstat(a.Path); statErr != nil {
			err = statErr
		} else {
			err = os.RemoveAll(a.Path)
		}
	} else {
		err = os.Remove(a.Path)
	}

	switch {
	case err == nil:
		return Removed, ""
	case errors.Is(err, fs.ErrNotExist):
		// Vanished between classification and execution. No removal
		// work happened, so this is a skip, not a success.
		return Skipped, reasonNotFound
	case errors.Is(err, fs.ErrPermission):
		return Failed, "permission denied"
	default:
		return Failed, err.Error()
	}
}

// strip removes one named extended attribute and leaves the file alone.
func (d Deleter) strip(a Action) (Result, string) {
	err := removeAttr(a.Path, a.Attr)
	switch {
	case err == nil:
		return Removed, ""
	case errors.Is(err, errNoAttr):
		return Skipped, reasonAttrAbsent
	case errors.Is(err, fs.ErrNotExist):
		return Skipped, reasonNotFound
	case errors.Is(err, errors.ErrUnsupported):
		return Skipped, reasonUnsupported
	case errors.Is(err, fs.ErrPermission):
		return Failed, "permission denied"
	default:
		return Failed, err.Error()
	}
}

// ListAttrs returns the extended attribute names on path without
// following symlinks. Unsupported platforms and unreadable entries
// report no attributes; classification simply sees none.
func ListAttrs(path string) []string {
	attrs, err := listAttrs(path)
	if err != nil {
		return nil
	}
	return attrs
}
