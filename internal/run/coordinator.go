// Package run coordinates one sweep: a single-threaded walker feeding a
// bounded pool of deletion workers, with every outcome funneled through
// one log-writer goroutine. The single consumer owns the audit log and
// the aggregate counters, so neither needs locking.
package run

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/lakshaymaurya-felt/junkmole/internal/audit"
	"github.com/lakshaymaurya-felt/junkmole/internal/remove"
	"github.com/lakshaymaurya-felt/junkmole/internal/rules"
	"github.com/lakshaymaurya-felt/junkmole/internal/scan"
)

// traverseKind marks outcomes attributed to traversal itself, such as a
// directory that refused listing. Not a removal action.
const traverseKind = rules.ActionKind("Traverse")

// Config describes one sweep.
type Config struct {
	// Root is the directory to scan.
	Root string

	// Recursive walks the whole tree instead of the top level.
	Recursive bool

	// ExcludeGit skips .git directories entirely.
	ExcludeGit bool

	// DryRun classifies and logs without mutating anything.
	DryRun bool

	// Workers is the deletion pool size, defaulting to GOMAXPROCS.
	Workers int

	// QueueSize bounds the action queue; a full queue backpressures
	// the walker. Defaults to 256.
	QueueSize int

	// Rules is the classification table, defaulting to rules.Default().
	Rules *rules.Set

	// Audit configures the CSV log group.
	Audit audit.Config

	// Progress, when set, is invoked for every outcome after it has
	// been recorded and counted. Reporting only; correctness never
	// depends on it.
	Progress func(remove.Outcome)
}

// Summary is the aggregate result of one sweep.
type Summary struct {
	RunID       string
	Root        string
	Scanned     int64
	Dispatched  int64
	Removed     int64
	Skipped     int64
	Failed      int64
	Planned     int64
	BytesFreed  int64
	Elapsed     time.Duration
	LogFiles    []string
	FreeBefore  uint64
	FreeAfter   uint64
	Interrupted bool
	Warnings    []string
}

// Run executes one sweep and returns its Summary. Pre-flight problems
// (bad root, unusable log destination) fail before traversal starts;
// per-entry failures are folded into outcomes and never abort the run.
// Cancelling ctx stops dispatch, drains in-flight work, flushes the log,
// and returns a partial Summary with Interrupted set.
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	start := time.Now()

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path %s is not a directory", cfg.Root)
	}

	set := cfg.Rules
	if set == nil {
		set = rules.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 256
	}

	log, err := audit.Open(cfg.Audit)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		RunID: uuid.NewString(),
		Root:  cfg.Root,
	}
	if u, err := disk.Usage(cfg.Root); err == nil {
		s.FreeBefore = u.Free
	}

	actions := make(chan remove.Action, queue)
	outcomes := make(chan remove.Outcome, queue)
	deleter := remove.Deleter{DryRun: cfg.DryRun}

	var pool sync.WaitGroup
	for i := 0; i < workers; i++ {
		pool.Add(1)
		go func() {
			defer pool.Done()
			for a := range actions {
				outcomes <- deleter.Execute(a)
			}
		}()
	}

	// Sole consumer: records, counts, then reports. Keeping counters
	// here is what makes them race-free.
	var logErr error
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for o := range outcomes {
			if err := log.Record(o); err != nil && logErr == nil {
				logErr = err
			}
			s.count(o)
			if cfg.Progress != nil {
				cfg.Progress(o)
			}
		}
	}()

	w := scan.NewWalker(cfg.Root, cfg.Recursive, cfg.ExcludeGit, set)
	walkErr := w.Walk(ctx,
		func(a remove.Action) {
			s.Dispatched++
			actions <- a
		},
		func(path string, err error) {
			s.Dispatched++
			outcomes <- traversalFailure(path, err)
		},
	)

	close(actions)
	pool.Wait()
	close(outcomes)
	<-writerDone
	w.Finish()

	if err := log.Finalize(); err != nil && logErr == nil {
		logErr = err
	}

	s.Scanned = w.Visited()
	s.Warnings = w.Warnings()
	s.LogFiles = log.Files()
	s.Elapsed = time.Since(start)
	s.Interrupted = walkErr != nil
	if u, err := disk.Usage(cfg.Root); err == nil {
		s.FreeAfter = u.Free
	}
	return s, logErr
}

// count folds one outcome into the aggregate counters. Called only from
// the log-writer goroutine.
func (s *Summary) count(o remove.Outcome) {
	switch o.Result {
	case remove.Removed:
		s.Removed++
		if o.Kind != rules.ActionStripAttribute {
			s.BytesFreed += o.Size
		}
	case remove.Skipped:
		s.Skipped++
	case remove.Failed:
		s.Failed++
	case remove.Planned:
		s.Planned++
	}
}

// traversalFailure builds the Failed outcome for an unreadable directory.
func traversalFailure(path string, err error) remove.Outcome {
	reason := err.Error()
	if errors.Is(err, fs.ErrPermission) {
		reason = "permission denied"
	}
	return remove.Outcome{
		Path:   path,
		Kind:   traverseKind,
		Result: remove.Failed,
		Reason: reason,
		Time:   time.Now(),
	}
}
