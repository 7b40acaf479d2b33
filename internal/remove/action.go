// Package remove executes removal actions against the OS and reports
// each attempt as exactly one Outcome. Extended-attribute access is
// platform-specific and isolated behind listAttrs/removeAttr in the
// per-platform files; everything else in the tree stays portable.
package remove

import (
	"time"

	"github.com/lakshaymaurya-felt/junkmole/internal/rules"
)

// Action is one removal operation against one resolved path.
// Immutable once created by classification.
type Action struct {
	// Path is the target path.
	Path string

	// Kind is the removal operation.
	Kind rules.ActionKind

	// Attr is the extended attribute name for StripAttribute actions.
	Attr string

	// Size is the entry's size as snapshotted at visit time,
	// 0 when unknown (directories).
	Size int64

	// IsDir marks junk-named directories, removed whole.
	IsDir bool

	// RuleName identifies the rule that produced this action.
	RuleName string
}

// Result classifies how an action attempt ended.
type Result string

const (
	// Removed means the mutation happened.
	Removed Result = "Removed"

	// Skipped means no removal work occurred (target or attribute
	// already gone). Carries a reason.
	Skipped Result = "Skipped"

	// Failed means the OS refused the operation. Carries a reason.
	// Failures are recorded, never raised.
	Failed Result = "Failed"

	// Planned is the dry-run result: the action would have executed.
	Planned Result = "Planned"
)

// Outcome is the recorded result of one dispatched Action. Produced
// exactly once per action, consumed exactly once by the audit log.
type Outcome struct {
	Path   string
	Kind   rules.ActionKind
	Attr   string
	Result Result
	Reason string
	Time   time.Time
	Size   int64
}

// outcome builds an Outcome for the action with the clock applied.
func (a Action) outcome(res Result, reason string) Outcome {
	return Outcome{
		Path:   a.Path,
		Kind:   a.Kind,
		Attr:   a.Attr,
		Result: res,
		Reason: reason,
		Time:   time.Now(),
		Size:   a.Size,
	}
}
