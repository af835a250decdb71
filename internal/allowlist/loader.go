package allowlist

import (
	"fmt"
	"os"
	"regexp"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

type allowlistFile struct {
	Entries []Entry `yaml:"entries"`
}

// Load reads and compiles an allowlist file. An unreadable file is a fatal
// configuration error; malformed individual entries are skipped and reported
// through a *ParseError alongside the (still usable) allowlist.
func Load(path string) (*Allowlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read allowlist file "+path)
	}
	return Parse(data)
}

// Parse compiles allowlist entries from YAML content. See Load for the
// error contract.
func Parse(data []byte) (*Allowlist, error) {
	var file allowlistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse allowlist YAML")
	}

	list := &Allowlist{}
	var problems []string

	for i, entry := range file.Entries {
		if count := setFieldCount(entry); count != 1 {
			problems = append(problems, fmt.Sprintf("entry %d must set exactly one of value/regex/path/line_hash", i))
			continue
		}

		if entry.Regex != "" {
			compiled, err := regexp.Compile(entry.Regex)
			if err != nil {
				problems = append(problems, fmt.Sprintf("entry %d has invalid regex %q: %v", i, entry.Regex, err))
				continue
			}
			entry.compiledRegex = compiled
		}

		if entry.Path != "" {
			compiled, err := glob.Compile(entry.Path, '/')
			if err != nil {
				problems = append(problems, fmt.Sprintf("entry %d has invalid path glob %q: %v", i, entry.Path, err))
				continue
			}
			entry.compiledGlob = compiled
		}

		list.entries = append(list.entries, entry)
	}

	if len(problems) > 0 {
		return list, &ParseError{Problems: problems}
	}
	return list, nil
}

func setFieldCount(entry Entry) int {
	count := 0
	for _, field := range []string{entry.Value, entry.Regex, entry.Path, entry.LineHash} {
		if field != "" {
			count++
		}
	}
	return count
}
