package registry

import (
	"regexp"

	"github.com/aleister1102/leakscout/internal/models"
)

// Rule defines one signature: a named regex with a secret-type label and a
// confidence tier. Rules are data, not code; adding a secret type means
// adding a record here or in a pattern file, never new detection logic.
type Rule struct {
	Name            string            `json:"name" yaml:"name"`
	Description     string            `json:"description,omitempty" yaml:"description,omitempty"`
	Pattern         string            `json:"pattern" yaml:"pattern"`
	SecretType      models.SecretType `json:"secret_type" yaml:"secret_type"`
	Confidence      models.Confidence `json:"confidence" yaml:"confidence"`
	CaseInsensitive bool              `json:"case_insensitive,omitempty" yaml:"case_insensitive,omitempty"`
	// CaptureGroup narrows the reported span to the first capture group, so
	// assignment-style rules report the value rather than the whole statement.
	CaptureGroup bool `json:"capture_group,omitempty" yaml:"capture_group,omitempty"`

	compiled *regexp.Regexp
	index    int // registration order, used for deterministic tie-breaks
}

// DefaultRules returns the built-in signature set covering common
// cloud-provider key formats, private-key PEM headers, and generic
// key/value assignment idioms.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "aws-access-key-id",
			Description: "AWS Access Key ID",
			Pattern:     `\b((?:A3T[A-Z0-9]|AKIA|AGPA|AROA|ASIA)[A-Z0-9]{16})\b`,
			SecretType:  models.SecretTypeAWSKey,
			Confidence:  models.ConfidenceHigh,
		},
		{
			Name:            "aws-secret-access-key",
			Description:     "AWS Secret Access Key in an assignment context",
			Pattern:         `(?:aws_secret_access_key|aws_secret_key)\s*[:=]\s*['"]([A-Za-z0-9/+=]{40})['"]`,
			SecretType:      models.SecretTypeAWSKey,
			Confidence:      models.ConfidenceHigh,
			CaseInsensitive: true,
			CaptureGroup:    true,
		},
		{
			Name:        "private-key-pem",
			Description: "PEM private key header",
			Pattern:     `(-----BEGIN(?: [A-Z0-9]+)* PRIVATE KEY(?: BLOCK)?-----)`,
			SecretType:  models.SecretTypePrivateKey,
			Confidence:  models.ConfidenceHigh,
		},
		{
			Name:        "github-token",
			Description: "GitHub personal access token (classic or fine-grained)",
			Pattern:     `\b((?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36,255})\b`,
			SecretType:  models.SecretTypeGitHubToken,
			Confidence:  models.ConfidenceHigh,
		},
		{
			Name:        "slack-token",
			Description: "Slack token (xoxp, xoxb, xoxa, xoxr)",
			Pattern:     `(xox[pbaros]-[0-9A-Za-z-]{10,250})`,
			SecretType:  models.SecretTypeSlackToken,
			Confidence:  models.ConfidenceHigh,
		},
		{
			Name:        "stripe-api-key",
			Description: "Stripe API key (live or test)",
			Pattern:     `\b((?:sk|rk)_(?:live|test)_[0-9a-zA-Z]{24,99})\b`,
			SecretType:  models.SecretTypeStripeKey,
			Confidence:  models.ConfidenceHigh,
		},
		{
			Name:        "jwt",
			Description: "JSON Web Token",
			Pattern:     `\b(eyJ[A-Za-z0-9\-_]{8,}\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_/+=]*)\b`,
			SecretType:  models.SecretTypeJWT,
			Confidence:  models.ConfidenceMedium,
		},
		{
			Name:         "url-credentials",
			Description:  "Credentials embedded in a URL (user:password@host)",
			Pattern:      `[a-zA-Z][a-zA-Z0-9+.-]*://[^:/@\s]+:([^@\s]{3,})@[^\s]+`,
			SecretType:   models.SecretTypeURLCredentials,
			Confidence:   models.ConfidenceMedium,
			CaptureGroup: true,
		},
		{
			Name:            "generic-api-key",
			Description:     "Generic API key / token assignment",
			Pattern:         `(?:api[_-]?key|apikey|secret[_-]?key|access[_-]?token|auth[_-]?token|client[_-]?secret|bearer[_-]?token|authorization[_-]?token)['"]?\s*[:=]\s*['"]?([A-Za-z0-9_\-/.+]{16,128})['"]?`,
			SecretType:      models.SecretTypeGenericToken,
			Confidence:      models.ConfidenceMedium,
			CaseInsensitive: true,
			CaptureGroup:    true,
		},
		{
			Name:            "password-assignment",
			Description:     "Hardcoded password assignment",
			Pattern:         `(?:password|passwd|pwd)['"]?\s*[:=]\s*['"]([^'"]{6,128})['"]`,
			SecretType:      models.SecretTypePasswordAssignment,
			Confidence:      models.ConfidenceMedium,
			CaseInsensitive: true,
			CaptureGroup:    true,
		},
	}
}
