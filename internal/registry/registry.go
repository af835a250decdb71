package registry

import (
	"embed"
	"fmt"
	"regexp"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"
	"github.com/aleister1102/leakscout/internal/models"

	"github.com/rs/zerolog"
)

//go:embed patterns.yaml
var embeddedPatterns embed.FS

// DuplicateRuleError is returned when a rule name collides with one already
// registered. Registry construction fails rather than start a scan with an
// inconsistent rule set.
type DuplicateRuleError struct {
	Name string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("duplicate rule name: %q", e.Name)
}

// Registry holds the compiled, immutable signature set. After construction
// it is read-only and safe for concurrent use by any number of scan workers.
type Registry struct {
	logger zerolog.Logger
	rules  []Rule
	byName map[string]int
}

// Option configures registry construction.
type Option func(*buildOptions)

type buildOptions struct {
	customRuleFiles []string
	enabledNames    []string
	extraRules      []Rule
}

// WithCustomRuleFile adds a YAML rule file loaded after the defaults.
func WithCustomRuleFile(path string) Option {
	return func(o *buildOptions) {
		if path != "" {
			o.customRuleFiles = append(o.customRuleFiles, path)
		}
	}
}

// WithEnabledRules restricts the registry to the named rules. A list
// containing "*" (or an empty list) keeps every rule.
func WithEnabledRules(names []string) Option {
	return func(o *buildOptions) { o.enabledNames = names }
}

// WithRules appends extra rule records, mainly for tests.
func WithRules(rules ...Rule) Option {
	return func(o *buildOptions) { o.extraRules = append(o.extraRules, rules...) }
}

// NewRegistry compiles the default rule set, the embedded pattern file, and
// any custom rule files into an immutable registry. Any invalid regex or
// duplicate rule name is fatal here, before any file is scanned.
func NewRegistry(logger zerolog.Logger, opts ...Option) (*Registry, error) {
	options := &buildOptions{}
	for _, opt := range opts {
		opt(options)
	}

	r := &Registry{
		logger: logger.With().Str("component", "PatternRegistry").Logger(),
		byName: make(map[string]int),
	}

	for _, rule := range DefaultRules() {
		if err := r.Register(rule); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to register default rule")
		}
	}

	embedded, err := loadEmbeddedRules(embeddedPatterns)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load embedded pattern rules")
	}
	for _, rule := range embedded {
		if err := r.Register(rule); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to register embedded rule")
		}
	}

	for _, path := range options.customRuleFiles {
		custom, err := LoadRuleFile(path)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to load custom rule file "+path)
		}
		for _, rule := range custom {
			if err := r.Register(rule); err != nil {
				return nil, errorwrapper.WrapError(err, "failed to register custom rule from "+path)
			}
		}
		r.logger.Debug().Int("count", len(custom)).Str("file", path).Msg("Loaded custom signature rules")
	}

	for _, rule := range options.extraRules {
		if err := r.Register(rule); err != nil {
			return nil, err
		}
	}

	if len(options.enabledNames) > 0 {
		r.restrictTo(options.enabledNames)
	}

	r.logger.Debug().Int("total_rules", len(r.rules)).Msg("Pattern registry initialized")
	return r, nil
}

// Register compiles and adds one rule. Fails with DuplicateRuleError when the
// name collides with an already registered rule.
func (r *Registry) Register(rule Rule) error {
	if rule.Name == "" {
		return errorwrapper.NewValidationError("name", rule.Name, "rule name must not be empty")
	}
	if _, exists := r.byName[rule.Name]; exists {
		return &DuplicateRuleError{Name: rule.Name}
	}

	pattern := rule.Pattern
	if rule.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return errorwrapper.NewError("failed to compile pattern for rule %q: %w", rule.Name, err)
	}
	// Prefer the longest match starting at the earliest offset so that
	// overlapping candidates within one rule resolve deterministically.
	compiled.Longest()

	rule.compiled = compiled
	rule.index = len(r.rules)
	r.byName[rule.Name] = rule.index
	r.rules = append(r.rules, rule)
	return nil
}

// restrictTo drops every rule not named. "*" keeps all rules; unknown names
// are logged and ignored.
func (r *Registry) restrictTo(names []string) {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "*" {
			return
		}
		if _, known := r.byName[name]; !known {
			r.logger.Warn().Str("rule", name).Msg("Enabled rule name does not match any registered rule")
			continue
		}
		keep[name] = true
	}

	filtered := make([]Rule, 0, len(keep))
	r.byName = make(map[string]int, len(keep))
	for _, rule := range r.rules {
		if keep[rule.Name] {
			// Registration indexes are preserved so tie-break ordering does
			// not depend on which rules happen to be enabled.
			r.byName[rule.Name] = rule.index
			filtered = append(filtered, rule)
		}
	}
	r.rules = filtered
}

// Rules returns the registered rule names in registration order.
func (r *Registry) Rules() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Match scans the unit's content against every registered rule and returns
// one finding per non-overlapping match per rule. Pure function of the
// content and the registered rules.
func (r *Registry) Match(unit models.TextUnit) []models.Finding {
	var findings []models.Finding

	for _, rule := range r.rules {
		matches := rule.compiled.FindAllStringSubmatchIndex(unit.Content, -1)
		for _, matchIndices := range matches {
			start, end := matchIndices[0], matchIndices[1]
			if rule.CaptureGroup && len(matchIndices) > 3 && matchIndices[2] >= 0 && matchIndices[2] < matchIndices[3] {
				start, end = matchIndices[2], matchIndices[3]
			}
			if start >= end {
				continue
			}

			findings = append(findings, models.Finding{
				Path:        unit.Path,
				LineNumber:  unit.LineNumber,
				StartColumn: start,
				EndColumn:   end,
				MatchedText: unit.Content[start:end],
				Detector:    models.DetectorSignature,
				SecretType:  rule.SecretType,
				RuleName:    rule.Name,
				Confidence:  rule.Confidence.Score(),
				RuleIndex:   rule.index,
			})
		}
	}

	return findings
}
