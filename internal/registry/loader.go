package registry

import (
	"embed"
	"os"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"

	"gopkg.in/yaml.v3"
)

// ruleFile is the YAML schema shared by the embedded pattern file and
// user-provided custom rule files.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRuleFile loads signature rules from a YAML file. The rules are not yet
// compiled; Register compiles and validates them.
func LoadRuleFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read rule file "+path)
	}
	return parseRules(data)
}

func loadEmbeddedRules(fs embed.FS) ([]Rule, error) {
	data, err := fs.ReadFile("patterns.yaml")
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read embedded pattern file")
	}
	return parseRules(data)
}

func parseRules(data []byte) ([]Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse rule YAML")
	}

	for i, rule := range file.Rules {
		if rule.Name == "" {
			return nil, errorwrapper.NewValidationError("name", rule.Name, "rule entry is missing a name")
		}
		if rule.Pattern == "" {
			return nil, errorwrapper.NewValidationError("pattern", rule.Pattern, "rule "+rule.Name+" is missing a pattern")
		}
		if rule.Confidence == "" {
			file.Rules[i].Confidence = "MEDIUM"
		}
	}

	return file.Rules, nil
}
