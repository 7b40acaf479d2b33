// Package rules defines the data-driven junk classification table.
//
// A Set is an ordered list of predicates evaluated against one filesystem
// entry's name and metadata. Rules are pure data: adding a pattern never
// requires touching traversal or deletion code. Evaluation order is the
// construction order and the first matching rule wins, so a given entry
// always classifies the same way for the same configuration.
package rules

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ActionKind names the removal operation a rule implies.
type ActionKind string

const (
	// ActionDeleteFile removes the whole entry (file or junk-named directory).
	ActionDeleteFile ActionKind = "DeleteFile"

	// ActionDeleteStream removes an alternate-data-stream marker file,
	// a file whose name carries a reserved stream suffix.
	ActionDeleteStream ActionKind = "DeleteStream"

	// ActionStripAttribute removes one named extended attribute and
	// leaves the file itself in place.
	ActionStripAttribute ActionKind = "StripAttribute"
)

// MatchKind selects how a rule's pattern is compared against an entry.
type MatchKind string

const (
	// MatchExact compares the base name literally.
	MatchExact MatchKind = "exact"

	// MatchGlob compares the base name with filepath.Match syntax.
	MatchGlob MatchKind = "glob"

	// MatchStream matches names containing the pattern as a stream
	// suffix marker (e.g. ":Zone.Identifier").
	MatchStream MatchKind = "stream"

	// MatchAttr matches when the entry carries the named extended
	// attribute. Pattern is the attribute name, compared literally.
	MatchAttr MatchKind = "xattr"
)

// Rule is one junk predicate.
type Rule struct {
	// Name is the unique identifier for this rule.
	Name string

	// Match selects the comparison strategy.
	Match MatchKind

	// Pattern is the name, glob, stream suffix, or attribute name.
	Pattern string

	// Action is the removal operation a match implies.
	Action ActionKind

	// Dirs marks rules that may match directory entries
	// (e.g. .AppleDouble, .fseventsd). File-only rules never
	// match directories and vice versa.
	Dirs bool

	// Description is a human-readable explanation.
	Description string
}

// MatchResult pairs the winning rule with the attribute it matched on,
// if the rule is an attribute rule.
type MatchResult struct {
	Rule Rule

	// Attr is the extended attribute name that matched, empty for
	// name-based rules.
	Attr string
}

// Set is an ordered, validated collection of rules.
type Set struct {
	rules []Rule
}

// New builds a Set from the given rules, preserving order. It rejects
// duplicate names, empty patterns, unknown kinds, and malformed globs.
func New(rs ...Rule) (*Set, error) {
	seen := make(map[string]bool, len(rs))
	for i, r := range rs {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: missing name", i)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("rule %q: duplicate name", r.Name)
		}
		seen[r.Name] = true

		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %q: missing pattern", r.Name)
		}

		switch r.Match {
		case MatchExact, MatchStream, MatchAttr:
		case MatchGlob:
			if _, err := filepath.Match(r.Pattern, "probe"); err != nil {
				return nil, fmt.Errorf("rule %q: bad glob %q: %w", r.Name, r.Pattern, err)
			}
		default:
			return nil, fmt.Errorf("rule %q: unknown match kind %q", r.Name, r.Match)
		}

		switch r.Action {
		case ActionDeleteFile, ActionDeleteStream, ActionStripAttribute:
		default:
			return nil, fmt.Errorf("rule %q: unknown action %q", r.Name, r.Action)
		}

		if r.Match == MatchAttr && r.Action != ActionStripAttribute {
			return nil, fmt.Errorf("rule %q: attribute rules must strip attributes", r.Name)
		}
	}
	return &Set{rules: append([]Rule(nil), rs...)}, nil
}

// Append returns a new Set with extra rules evaluated after the
// receiver's. User-supplied rules merge behind the built-ins this way.
func (s *Set) Append(rs ...Rule) (*Set, error) {
	return New(append(append([]Rule(nil), s.rules...), rs...)...)
}

// Len returns the number of rules in evaluation order.
func (s *Set) Len() int { return len(s.rules) }

// Rules returns a copy of the rule table in evaluation order.
func (s *Set) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Match evaluates the set against one entry, first match wins.
// name is the base name, isDir the entry's directory flag, and attrs
// the extended attribute names detected on the entry at visit time.
func (s *Set) Match(name string, isDir bool, attrs []string) (MatchResult, bool) {
	for _, r := range s.rules {
		if isDir != r.Dirs && r.Match != MatchAttr {
			continue
		}
		switch r.Match {
		case MatchExact:
			if name == r.Pattern {
				return MatchResult{Rule: r}, true
			}
		case MatchGlob:
			// Patterns are validated at construction.
			if ok, _ := filepath.Match(r.Pattern, name); ok {
				return MatchResult{Rule: r}, true
			}
		case MatchStream:
			if strings.Contains(name, r.Pattern) {
				return MatchResult{Rule: r}, true
			}
		case MatchAttr:
			if isDir {
				continue
			}
			for _, a := range attrs {
				if a == r.Pattern {
					return MatchResult{Rule: r, Attr: a}, true
				}
			}
		}
	}
	return MatchResult{}, false
}
