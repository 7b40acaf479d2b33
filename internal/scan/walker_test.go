package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/junkmole/internal/remove"
	"github.com/lakshaymaurya-felt/junkmole/internal/rules"
)

// collect runs a walk and returns the dispatched actions and failed paths.
func collect(t *testing.T, w *Walker) (actions []remove.Action, failed []string) {
	t.Helper()
	err := w.Walk(context.Background(),
		func(a remove.Action) { actions = append(actions, a) },
		func(path string, _ error) { failed = append(failed, path) },
	)
	require.NoError(t, err)
	return actions, failed
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func actionPaths(actions []remove.Action) []string {
	var out []string
	for _, a := range actions {
		out = append(out, a.Path)
	}
	return out
}

func TestWalkClassifiesTopLevel(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, ".DS_Store"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "file.txt:Zone.Identifier"))

	w := NewWalker(dir, false, false, rules.Default())
	actions, failed := collect(t, w)

	assert.Empty(t, failed)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, ".DS_Store"),
		filepath.Join(dir, "file.txt:Zone.Identifier"),
	}, actionPaths(actions))

	for _, a := range actions {
		if a.Path == filepath.Join(dir, "file.txt:Zone.Identifier") {
			assert.Equal(t, rules.ActionDeleteStream, a.Kind)
		}
	}
}

func TestWalkNonRecursiveStopsAtTopLevel(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "sub", ".DS_Store"))

	w := NewWalker(dir, false, false, rules.Default())
	actions, _ := collect(t, w)
	assert.Empty(t, actions)
}

func TestWalkRecursiveDescends(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a", "b", "c", "Thumbs.db"))
	touch(t, filepath.Join(dir, "a", "keep.txt"))

	w := NewWalker(dir, true, false, rules.Default())
	actions, _ := collect(t, w)
	assert.Equal(t, []string{filepath.Join(dir, "a", "b", "c", "Thumbs.db")}, actionPaths(actions))
}

func TestWalkExcludesGit(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, ".git", "objects", "pack.tmp"))
	touch(t, filepath.Join(dir, "src", "old.tmp"))

	w := NewWalker(dir, true, true, rules.Default())
	actions, _ := collect(t, w)
	assert.Equal(t, []string{filepath.Join(dir, "src", "old.tmp")}, actionPaths(actions))

	// Without the flag the .git contents are fair game.
	w = NewWalker(dir, true, false, rules.Default())
	actions, _ = collect(t, w)
	assert.Len(t, actions, 2)
}

func TestWalkDispatchesJunkDirectoryWholeWithoutDescending(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, ".AppleDouble", ".DS_Store"))

	w := NewWalker(dir, true, false, rules.Default())
	actions, _ := collect(t, w)

	// One action for the directory itself; the .DS_Store inside is the
	// deleter's problem, not a second dispatch.
	require.Len(t, actions, 1)
	assert.Equal(t, filepath.Join(dir, ".AppleDouble"), actions[0].Path)
	assert.True(t, actions[0].IsDir)
}

func TestWalkNeverFollowsSymlinkedDirectories(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	touch(t, filepath.Join(outside, ".DS_Store"))
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "link")))

	w := NewWalker(dir, true, false, rules.Default())
	actions, _ := collect(t, w)
	assert.Empty(t, actions, "must not classify through the symlink")
	assert.FileExists(t, filepath.Join(outside, ".DS_Store"))
}

func TestWalkFailsUnreadableDirAndContinues(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	touch(t, filepath.Join(dir, "sibling", ".DS_Store"))

	w := NewWalker(dir, true, false, rules.Default())
	actions, failed := collect(t, w)

	assert.Equal(t, []string{locked}, failed)
	assert.Equal(t, []string{filepath.Join(dir, "sibling", ".DS_Store")}, actionPaths(actions))
}

func TestWalkVanishedRootYieldsNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	w := NewWalker(dir, true, false, rules.Default())
	actions, failed := collect(t, w)
	assert.Empty(t, actions)
	assert.Empty(t, failed)
}

func TestWalkCancellationStopsDispatch(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a", "b", "c"} {
		touch(t, filepath.Join(dir, n, ".DS_Store"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWalker(dir, true, false, rules.Default())
	err := w.Walk(ctx,
		func(remove.Action) { t.Fatal("dispatched after cancellation") },
		func(string, error) {},
	)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateDraining, w.State())
}

func TestWalkerStates(t *testing.T) {
	dir := t.TempDir()
	w := NewWalker(dir, false, false, rules.Default())
	assert.Equal(t, StateIdle, w.State())

	collect(t, w)
	assert.Equal(t, StateDraining, w.State())

	w.Finish()
	assert.Equal(t, StateDone, w.State())
}

func TestVisitedCountsEntries(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "b.txt"))
	touch(t, filepath.Join(dir, "sub", "c.txt"))

	w := NewWalker(dir, true, false, rules.Default())
	collect(t, w)
	assert.Equal(t, int64(4), w.Visited()) // a, b, sub, sub/c
}
