package run

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/junkmole/internal/audit"
	"github.com/lakshaymaurya-felt/junkmole/internal/remove"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("junkdata"), 0o644))
}

func sweep(t *testing.T, root string, mutate func(*Config)) *Summary {
	t.Helper()
	cfg := Config{
		Root:      root,
		Recursive: true,
		Audit:     audit.Config{BasePath: filepath.Join(t.TempDir(), "log.csv")},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	return s
}

func readRecords(t *testing.T, paths []string) [][]string {
	t.Helper()
	var all [][]string
	for _, p := range paths {
		f, err := os.Open(p)
		require.NoError(t, err)
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.Equal(t, "timestamp", rows[0][0], "header in %s", p)
		all = append(all, rows[1:]...)
	}
	return all
}

func TestRunRemovesJunkAndKeepsTheRest(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".DS_Store"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "file.txt:Zone.Identifier"))

	s := sweep(t, root, nil)

	assert.Equal(t, int64(2), s.Removed)
	assert.Equal(t, int64(0), s.Failed)
	assert.NoFileExists(t, filepath.Join(root, ".DS_Store"))
	assert.NoFileExists(t, filepath.Join(root, "file.txt:Zone.Identifier"))
	assert.FileExists(t, filepath.Join(root, "notes.txt"))

	records := readRecords(t, s.LogFiles)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "Removed", r[3])
		assert.NotContains(t, r[1], "notes.txt")
	}
}

func TestRunOutcomeConservation(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		touch(t, filepath.Join(root, fmt.Sprintf("d%d", i%5), fmt.Sprintf("f%d.tmp", i)))
	}

	s := sweep(t, root, func(c *Config) { c.Workers = 4 })

	recorded := s.Removed + s.Skipped + s.Failed + s.Planned
	assert.Equal(t, s.Dispatched, recorded, "every dispatched action produces exactly one outcome")
	assert.Len(t, readRecords(t, s.LogFiles), int(s.Dispatched), "every outcome is logged exactly once")
}

func TestRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".DS_Store"))
	touch(t, filepath.Join(root, "sub", "old.bak"))

	first := sweep(t, root, nil)
	assert.Equal(t, int64(2), first.Removed)

	second := sweep(t, root, nil)
	assert.Equal(t, int64(0), second.Removed, "second run finds nothing left to remove")
	assert.Equal(t, int64(0), second.Failed)
}

func TestRunDryRunMutatesNothing(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".DS_Store"))
	touch(t, filepath.Join(root, "scratch.tmp"))

	s := sweep(t, root, func(c *Config) { c.DryRun = true })

	assert.Equal(t, int64(2), s.Planned)
	assert.Equal(t, int64(0), s.Removed)
	assert.FileExists(t, filepath.Join(root, ".DS_Store"))
	assert.FileExists(t, filepath.Join(root, "scratch.tmp"))

	records := readRecords(t, s.LogFiles)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "Planned", r[3])
	}
}

func TestRunUnreadableDirectoryIsFailedNotFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	touch(t, filepath.Join(root, "sibling", ".DS_Store"))

	s := sweep(t, root, nil)

	assert.Equal(t, int64(1), s.Failed)
	assert.Equal(t, int64(1), s.Removed)

	var foundFailure bool
	for _, r := range readRecords(t, s.LogFiles) {
		if r[1] == locked {
			foundFailure = true
			assert.Equal(t, "Failed", r[3])
			assert.Equal(t, "permission denied", r[4])
		}
	}
	assert.True(t, foundFailure, "failure attributed to the directory path")
}

func TestRunSplitsLogAtThreshold(t *testing.T) {
	root := t.TempDir()
	const total = 10
	for i := 0; i < total; i++ {
		touch(t, filepath.Join(root, fmt.Sprintf("f%d.tmp", i)))
	}

	s := sweep(t, root, func(c *Config) { c.Audit.MaxRecords = 4 })

	assert.Len(t, s.LogFiles, 3) // ceil(10/4)
	assert.Len(t, readRecords(t, s.LogFiles), total)
}

func TestRunProgressCallbackSeesEveryOutcome(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.tmp"))
	touch(t, filepath.Join(root, "b.bak"))

	var seen []string
	s := sweep(t, root, func(c *Config) {
		c.Progress = func(o remove.Outcome) { seen = append(seen, o.Path) }
	})

	assert.Equal(t, int64(2), s.Removed)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.tmp"),
		filepath.Join(root, "b.bak"),
	}, seen)
}

func TestRunCancelledContextReportsPartialSummary(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".DS_Store"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := Run(ctx, Config{
		Root:      root,
		Recursive: true,
		Audit:     audit.Config{BasePath: filepath.Join(t.TempDir(), "log.csv")},
	})
	require.NoError(t, err)
	assert.True(t, s.Interrupted)
	assert.Equal(t, int64(0), s.Dispatched)
	assert.FileExists(t, filepath.Join(root, ".DS_Store"))
}

func TestRunBadRootIsFatal(t *testing.T) {
	_, err := Run(context.Background(), Config{
		Root:  filepath.Join(t.TempDir(), "missing"),
		Audit: audit.Config{BasePath: filepath.Join(t.TempDir(), "log.csv")},
	})
	assert.Error(t, err)
}

func TestRunRootMustBeDirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "plain")
	touch(t, f)
	_, err := Run(context.Background(), Config{
		Root:  f,
		Audit: audit.Config{BasePath: filepath.Join(t.TempDir(), "log.csv")},
	})
	assert.Error(t, err)
}

func TestRunUnwritableLogIsFatal(t *testing.T) {
	_, err := Run(context.Background(), Config{
		Root:  t.TempDir(),
		Audit: audit.Config{BasePath: filepath.Join(t.TempDir(), "no", "dir", "log.csv")},
	})
	assert.Error(t, err)
}

func TestRunSummaryBasics(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "x.tmp"))

	s := sweep(t, root, nil)
	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, root, s.Root)
	assert.Greater(t, s.Scanned, int64(0))
	assert.Greater(t, s.Elapsed.Nanoseconds(), int64(0))
	assert.Equal(t, int64(8), s.BytesFreed) // "junkdata"
	assert.False(t, s.Interrupted)
}
