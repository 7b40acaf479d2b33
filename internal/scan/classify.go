package scan

import (
	"github.com/lakshaymaurya-felt/junkmole/internal/remove"
	"github.com/lakshaymaurya-felt/junkmole/internal/rules"
)

// Classify evaluates the rule set against one entry and produces the
// removal action for the first matching rule, or ok=false when nothing
// matches. Pure function of the snapshot and the set: no I/O, no state.
//
// Directory entries only ever match directory-named rules; their
// contents are the walker's business, not the classifier's.
func Classify(e Entry, set *rules.Set) (remove.Action, bool) {
	m, ok := set.Match(e.Name, e.IsDir, e.Attrs)
	if !ok {
		return remove.Action{}, false
	}
	return remove.Action{
		Path:     e.Path,
		Kind:     m.Rule.Action,
		Attr:     m.Attr,
		Size:     e.Size,
		IsDir:    e.IsDir,
		RuleName: m.Rule.Name,
	}, true
}
