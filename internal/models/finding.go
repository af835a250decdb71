package models

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Detector identifies which detection strategy produced a finding.
type Detector string

const (
	DetectorSignature Detector = "signature"
	DetectorEntropy   Detector = "entropy"
)

// SecretType classifies the kind of secret a signature rule matches.
// Entropy findings carry no secret type.
type SecretType string

const (
	SecretTypeAWSKey             SecretType = "aws_key"
	SecretTypePrivateKey         SecretType = "private_key"
	SecretTypeGenericToken       SecretType = "generic_token"
	SecretTypePasswordAssignment SecretType = "password_assignment"
	SecretTypeGitHubToken        SecretType = "github_token"
	SecretTypeSlackToken         SecretType = "slack_token"
	SecretTypeStripeKey          SecretType = "stripe_key"
	SecretTypeJWT                SecretType = "jwt"
	SecretTypeURLCredentials     SecretType = "url_credentials"
)

// Confidence is the coarse tier assigned to a signature rule. The numeric
// score on a Finding is derived from it.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Score maps a confidence tier to a numeric score in [0, 1].
func (c Confidence) Score() float64 {
	switch c {
	case ConfidenceHigh:
		return 0.9
	case ConfidenceMedium:
		return 0.7
	case ConfidenceLow:
		return 0.5
	default:
		return 0.5
	}
}

// Finding represents one candidate secret occurrence. Findings are immutable
// value objects: they are created by a detector and then only filtered,
// sorted, or superseded, never mutated in place.
type Finding struct {
	Path        string     `json:"path" parquet:"name=path, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	LineNumber  int        `json:"line_number" parquet:"name=line_number, type=INT32, repetitiontype=REQUIRED"`
	StartColumn int        `json:"start_column" parquet:"name=start_column, type=INT32, repetitiontype=REQUIRED"`
	EndColumn   int        `json:"end_column" parquet:"name=end_column, type=INT32, repetitiontype=REQUIRED"`
	MatchedText string     `json:"matched_text" parquet:"name=matched_text, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	Detector    Detector   `json:"detector" parquet:"name=detector, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	SecretType  SecretType `json:"secret_type,omitempty" parquet:"name=secret_type, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	RuleName    string     `json:"rule_name,omitempty" parquet:"name=rule_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Confidence  float64    `json:"confidence" parquet:"name=confidence, type=DOUBLE, repetitiontype=REQUIRED"`

	// RuleIndex is the registration order of the originating rule. It is the
	// final tie-break during deduplication so that results stay deterministic.
	// Entropy findings carry the maximum index and always lose ties.
	RuleIndex int `json:"-" parquet:"name=rule_index, type=INT32, repetitiontype=OPTIONAL"`
}

// Redacted returns the matched text with its middle replaced, keeping at most
// four characters on each side. Reports use this form so that scan output
// does not itself leak the secret.
func (f Finding) Redacted() string {
	const keep = 4
	if len(f.MatchedText) <= keep*2 {
		return strings.Repeat("*", len(f.MatchedText))
	}
	return f.MatchedText[:keep] + "..." + f.MatchedText[len(f.MatchedText)-keep:]
}

// Fingerprint returns a stable identifier for the finding, suitable for
// allowlisting a specific occurrence.
func (f Finding) Fingerprint() string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s:%d:%d:%d:%s", f.Path, f.LineNumber, f.StartColumn, f.EndColumn, f.MatchedText)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Overlaps reports whether two findings cover overlapping column spans on the
// same line of the same file.
func (f Finding) Overlaps(other Finding) bool {
	if f.Path != other.Path || f.LineNumber != other.LineNumber {
		return false
	}
	return f.StartColumn < other.EndColumn && other.StartColumn < f.EndColumn
}

// LineHash returns the stable hash of a line's trimmed content used by
// line-hash allowlist entries.
func LineHash(lineContent string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.TrimSpace(lineContent)))
}
