package allowlist

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aleister1102/leakscout/internal/models"

	"github.com/gobwas/glob"
)

// Entry is one suppression rule from the allowlist file. Exactly one of the
// fields is set per entry.
type Entry struct {
	// Value suppresses findings whose matched text equals it exactly.
	Value string `yaml:"value,omitempty"`
	// Regex suppresses findings whose matched text matches it.
	Regex string `yaml:"regex,omitempty"`
	// Path suppresses every finding in files matching the glob.
	Path string `yaml:"path,omitempty"`
	// LineHash suppresses findings on lines whose trimmed-content xxhash64
	// (hex) equals it. Survives reformatting-neutral edits elsewhere in the
	// file, unlike line numbers.
	LineHash string `yaml:"line_hash,omitempty"`

	compiledRegex *regexp.Regexp
	compiledGlob  glob.Glob
}

// ParseError is a recoverable load failure: every well-formed entry still
// loads, and the error reports which entries were skipped.
type ParseError struct {
	Problems []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("allowlist contains %d malformed entries: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Allowlist is the compiled set of suppression entries. Immutable after
// construction; safe for concurrent reads by all scan workers.
type Allowlist struct {
	entries []Entry
}

// Len returns the number of loaded entries.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// ShouldSuppress tests the finding's matched text, its path, and the stable
// hash of its line content against every entry, returning true on the first
// match. Pure predicate with no side effects.
func (a *Allowlist) ShouldSuppress(finding models.Finding, lineContent string) bool {
	if a == nil {
		return false
	}

	var lineHash string
	for _, entry := range a.entries {
		switch {
		case entry.Value != "":
			if finding.MatchedText == entry.Value {
				return true
			}
		case entry.compiledRegex != nil:
			if entry.compiledRegex.MatchString(finding.MatchedText) {
				return true
			}
		case entry.compiledGlob != nil:
			if entry.compiledGlob.Match(finding.Path) {
				return true
			}
		case entry.LineHash != "":
			if lineHash == "" {
				lineHash = models.LineHash(lineContent)
			}
			if strings.EqualFold(entry.LineHash, lineHash) {
				return true
			}
		}
	}
	return false
}
