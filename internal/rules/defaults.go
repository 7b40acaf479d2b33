package rules

// ─── Built-in Junk Tables ────────────────────────────────────────────────────

// junkNames are exact file names that are always safe to remove.
var junkNames = []string{
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	".LSOverride",
	".directory",
}

// junkDirNames are exact directory names that are removed whole.
// The walker never descends into a matched directory.
var junkDirNames = []string{
	".AppleDouble",
	".fseventsd",
	".Spotlight-V100",
	".DocumentRevisions-V100",
	".TemporaryItems",
	"lost+found",
}

// junkPatterns are file glob patterns for common leftovers:
// AppleDouble prefixes, editor swap files, temp and backup suffixes,
// and NFS silly-rename files.
var junkPatterns = []string{
	"._*",
	"*.swp",
	"*.swo",
	"*.tmp",
	"*.bak",
	"*~",
	".nfs*",
}

// streamSuffix is the alternate-data-stream marker carried in file names
// when an NTFS stream is materialized as a sibling file.
const streamSuffix = ":Zone.Identifier"

// DefaultAttr is the extended attribute stripped by default. Browsers on
// some platforms tag downloads with it.
const DefaultAttr = "user.Zone.Identifier"

// Default returns the built-in rule set in its fixed evaluation order:
// exact file names, exact directory names, the .Trash-* directory glob,
// file globs, the stream marker, then the default attribute rule.
func Default() *Set {
	var rs []Rule

	for _, n := range junkNames {
		rs = append(rs, Rule{
			Name:        "name:" + n,
			Match:       MatchExact,
			Pattern:     n,
			Action:      ActionDeleteFile,
			Description: "OS metadata file",
		})
	}

	for _, n := range junkDirNames {
		rs = append(rs, Rule{
			Name:        "dir:" + n,
			Match:       MatchExact,
			Pattern:     n,
			Action:      ActionDeleteFile,
			Dirs:        true,
			Description: "OS metadata directory",
		})
	}

	rs = append(rs, Rule{
		Name:        "dir:.Trash-*",
		Match:       MatchGlob,
		Pattern:     ".Trash-*",
		Action:      ActionDeleteFile,
		Dirs:        true,
		Description: "Per-user trash directory",
	})

	for _, p := range junkPatterns {
		rs = append(rs, Rule{
			Name:        "glob:" + p,
			Match:       MatchGlob,
			Pattern:     p,
			Action:      ActionDeleteFile,
			Description: "Editor or temp leftover",
		})
	}

	rs = append(rs, Rule{
		Name:        "stream:" + streamSuffix,
		Match:       MatchStream,
		Pattern:     streamSuffix,
		Action:      ActionDeleteStream,
		Description: "Alternate-data-stream marker file",
	})

	rs = append(rs, AttrRule(DefaultAttr))

	set, err := New(rs...)
	if err != nil {
		// The built-in table is static; a failure here is a programming error.
		panic("rules: invalid built-in table: " + err.Error())
	}
	return set
}

// AttrRule builds a strip-attribute rule for the given attribute name.
// Used for the default attribute and for names passed via --attr.
func AttrRule(attr string) Rule {
	return Rule{
		Name:        "attr:" + attr,
		Match:       MatchAttr,
		Pattern:     attr,
		Action:      ActionStripAttribute,
		Description: "Extended attribute",
	}
}
