package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileRule is the YAML shape of one user-supplied rule.
type fileRule struct {
	Name        string `yaml:"name"`
	Match       string `yaml:"match"`
	Pattern     string `yaml:"pattern"`
	Action      string `yaml:"action"`
	Dirs        bool   `yaml:"dirs"`
	Description string `yaml:"description"`
}

// ruleFile is the YAML shape of a rules file.
type ruleFile struct {
	Rules      []fileRule `yaml:"rules"`
	Attributes []string   `yaml:"attributes"`
}

var yamlActions = map[string]ActionKind{
	"delete-file":     ActionDeleteFile,
	"delete-stream":   ActionDeleteStream,
	"strip-attribute": ActionStripAttribute,
}

var yamlMatches = map[string]MatchKind{
	"exact":  MatchExact,
	"glob":   MatchGlob,
	"stream": MatchStream,
	"xattr":  MatchAttr,
}

// LoadFile parses a YAML rules file and returns its rules in file order.
// Attribute names listed under `attributes` become strip-attribute rules
// appended after the explicit rules.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	var out []Rule
	for i, fr := range rf.Rules {
		action, ok := yamlActions[fr.Action]
		if !ok {
			return nil, fmt.Errorf("rules file %s: rule %d: unknown action %q", path, i, fr.Action)
		}
		match, ok := yamlMatches[fr.Match]
		if !ok {
			return nil, fmt.Errorf("rules file %s: rule %d: unknown match %q", path, i, fr.Match)
		}
		out = append(out, Rule{
			Name:        fr.Name,
			Match:       match,
			Pattern:     fr.Pattern,
			Action:      action,
			Dirs:        fr.Dirs,
			Description: fr.Description,
		})
	}

	for _, attr := range rf.Attributes {
		out = append(out, AttrRule(attr))
	}

	return out, nil
}
