// Package audit serializes removal outcomes into one or more CSV files.
//
// A Log is owned by exactly one writer goroutine; there is no internal
// locking because the coordinator funnels every outcome through a single
// channel consumer. Cross-process exclusivity is a different matter: the
// base path is guarded with an advisory file lock so two concurrent runs
// cannot interleave rows in one log group.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/lakshaymaurya-felt/junkmole/internal/remove"
)

// header is the fixed column order of every log file.
var header = []string{"timestamp", "path", "action", "result", "reason", "size_bytes"}

// GroupBy selects how outcomes are routed across files.
type GroupBy string

const (
	// GroupNone writes every record to one sequence of files.
	GroupNone GroupBy = "none"

	// GroupAction routes records by action kind.
	GroupAction GroupBy = "action"

	// GroupResult routes records into success and failure files.
	GroupResult GroupBy = "result"
)

// Splitting defaults, matching the classic CSV thresholds.
const (
	DefaultMaxRecords = 1000
	DefaultMaxBytes   = 1 << 20 // 1 MiB
)

// Config describes one log group.
type Config struct {
	// BasePath is the first file of the ungrouped sequence; grouped and
	// rotated files derive their names from it.
	BasePath string

	// MaxRecords rotates the active file after this many records.
	// 0 disables record-count splitting.
	MaxRecords int

	// MaxBytes rotates the active file once it reaches this size.
	// 0 disables size splitting.
	MaxBytes int64

	// GroupBy selects the routing policy. Exactly one policy is active.
	GroupBy GroupBy
}

// Log writes outcomes to a group of CSV files under a splitting policy.
// Not safe for concurrent use: the log-writer goroutine is the sole owner.
type Log struct {
	cfg   Config
	lock  *flock.Flock
	files map[string]*logFile
	paths []string
	done  bool
}

// logFile is one open CSV file in the group.
type logFile struct {
	group   string
	seq     int
	f       *os.File
	written int64
	w       *csv.Writer
	records int
}

// Open validates the destination, takes the advisory lock, and prepares
// the group. In the ungrouped policy the first file is created eagerly so
// an unwritable destination fails the run before traversal starts.
func Open(cfg Config) (*Log, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("audit: log path is empty")
	}
	if cfg.GroupBy == "" {
		cfg.GroupBy = GroupNone
	}
	switch cfg.GroupBy {
	case GroupNone, GroupAction, GroupResult:
	default:
		return nil, fmt.Errorf("audit: unknown group-by policy %q", cfg.GroupBy)
	}

	lock := flock.New(cfg.BasePath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("audit: cannot lock %s: %w", cfg.BasePath, err)
	}
	if !locked {
		return nil, fmt.Errorf("audit: %s is locked by another run", cfg.BasePath)
	}

	l := &Log{
		cfg:   cfg,
		lock:  lock,
		files: make(map[string]*logFile),
	}

	if cfg.GroupBy == GroupNone {
		if _, err := l.open("", 1); err != nil {
			l.unlock()
			return nil, err
		}
	}
	return l, nil
}

// Record appends one outcome as a CSV row, rotating the active file
// first if a threshold has been reached. Every outcome lands in exactly
// one file of the group.
func (l *Log) Record(o remove.Outcome) error {
	if l.done {
		return fmt.Errorf("audit: record after finalize")
	}

	group := l.groupKey(o)
	lf := l.files[group]
	if lf == nil {
		var err error
		if lf, err = l.open(group, 1); err != nil {
			return err
		}
	}

	if l.full(lf) {
		if err := lf.close(); err != nil {
			return err
		}
		var err error
		if lf, err = l.open(group, lf.seq+1); err != nil {
			return err
		}
	}

	row := []string{
		o.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		o.Path,
		string(o.Kind),
		string(o.Result),
		o.Reason,
		strconv.FormatInt(o.Size, 10),
	}
	if err := lf.write(row); err != nil {
		return fmt.Errorf("audit: write %s: %w", lf.f.Name(), err)
	}
	return nil
}

// Finalize flushes and closes every open file and releases the lock.
// Safe to call once; the Log is unusable afterwards.
func (l *Log) Finalize() error {
	if l.done {
		return nil
	}
	l.done = true

	var firstErr error
	for _, lf := range l.files {
		if err := lf.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.unlock()
	return firstErr
}

// Files returns the paths of every log file created, in creation order.
func (l *Log) Files() []string {
	return append([]string(nil), l.paths...)
}

func (l *Log) unlock() {
	path := l.lock.Path()
	_ = l.lock.Unlock()
	_ = os.Remove(path)
}

// groupKey maps an outcome to its routing key under the active policy.
func (l *Log) groupKey(o remove.Outcome) string {
	switch l.cfg.GroupBy {
	case GroupAction:
		return strings.ToLower(string(o.Kind))
	case GroupResult:
		if o.Result == remove.Failed {
			return "failed"
		}
		return "ok"
	}
	return ""
}

// full reports whether the active file must rotate before the next row.
func (l *Log) full(lf *logFile) bool {
	if l.cfg.MaxRecords > 0 && lf.records >= l.cfg.MaxRecords {
		return true
	}
	if l.cfg.MaxBytes > 0 && lf.written >= l.cfg.MaxBytes {
		return true
	}
	return false
}

// open creates the next file for a group and writes its header row.
func (l *Log) open(group string, seq int) (*logFile, error) {
	path := l.fileName(group, seq)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open log file: %w", err)
	}

	lf := &logFile{group: group, seq: seq, f: f}
	lf.w = csv.NewWriter(countWriter{f, &lf.written})
	if err := lf.w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("audit: write header: %w", err)
	}
	lf.w.Flush()
	if err := lf.w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("audit: write header: %w", err)
	}

	l.files[group] = lf
	l.paths = append(l.paths, path)
	return lf, nil
}

// fileName derives a deterministic file name from the base path:
// the group key is inserted before the extension and rotation appends a
// numeric suffix, e.g. log.csv, log_2.csv, log_failed.csv, log_failed_2.csv.
func (l *Log) fileName(group string, seq int) string {
	ext := filepath.Ext(l.cfg.BasePath)
	stem := strings.TrimSuffix(l.cfg.BasePath, ext)
	if group != "" {
		stem += "_" + group
	}
	if seq > 1 {
		stem += "_" + strconv.Itoa(seq)
	}
	return stem + ext
}

// write appends one row and flushes it through to the OS, so a crash
// mid-run loses at most the row being written.
func (lf *logFile) write(row []string) error {
	if err := lf.w.Write(row); err != nil {
		return err
	}
	lf.w.Flush()
	if err := lf.w.Error(); err != nil {
		return err
	}
	lf.records++
	return nil
}

func (lf *logFile) close() error {
	lf.w.Flush()
	err := lf.w.Error()
	if cerr := lf.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// countWriter tracks bytes reaching the file so the size threshold sees
// real output, not buffered rows.
type countWriter struct {
	w io.Writer
	n *int64
}

func (c countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}
