package entropy

import (
	"math"

	"github.com/aleister1102/leakscout/internal/config"
	"github.com/aleister1102/leakscout/internal/models"

	"github.com/rs/zerolog"
)

// Analyzer flags high-randomness tokens independent of any known signature.
// Entropy alone is noisy (UUIDs, hashes, minified identifiers score high), so
// its confidence is capped below signature matches and downstream consumers
// rank by confidence instead of treating entropy hits as certain.
type Analyzer struct {
	cfg    config.EntropyConfig
	logger zerolog.Logger
}

// NewAnalyzer creates an analyzer from the entropy configuration.
func NewAnalyzer(cfg config.EntropyConfig, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		logger: logger.With().Str("component", "EntropyAnalyzer").Logger(),
	}
}

// Analyze extracts candidate tokens from the line and emits a finding for
// each token whose Shannon entropy exceeds the threshold of its alphabet.
// Pure function of the unit's content and the immutable configuration.
func (a *Analyzer) Analyze(unit models.TextUnit) []models.Finding {
	if !a.cfg.Enabled {
		return nil
	}

	var findings []models.Finding
	for _, tok := range extractTokens(unit.Content, a.cfg.MinTokenLength) {
		score := Shannon(tok.text)

		threshold, ceiling := a.cfg.Base64Threshold, a.cfg.Base64Ceiling
		if isHexToken(tok.text) {
			threshold, ceiling = a.cfg.HexThreshold, a.cfg.HexCeiling
		}
		if score <= threshold {
			continue
		}

		findings = append(findings, models.Finding{
			Path:        unit.Path,
			LineNumber:  unit.LineNumber,
			StartColumn: tok.start,
			EndColumn:   tok.start + len(tok.text),
			MatchedText: tok.text,
			Detector:    models.DetectorEntropy,
			Confidence:  a.confidence(score, threshold, ceiling),
			RuleIndex:   int(^uint(0) >> 1), // entropy findings always lose dedupe ties
		})
	}
	return findings
}

// confidence scales linearly between the threshold and the saturation
// ceiling, then caps at MaxConfidence.
func (a *Analyzer) confidence(score, threshold, ceiling float64) float64 {
	if ceiling <= threshold {
		return a.cfg.MaxConfidence
	}
	scaled := (score - threshold) / (ceiling - threshold)
	if scaled > 1 {
		scaled = 1
	}
	return scaled * a.cfg.MaxConfidence
}

// Shannon computes the Shannon entropy in bits per character over the
// string's byte frequency distribution. Only the symbol frequencies matter:
// permuting the characters never changes the result.
func Shannon(s string) float64 {
	if s == "" {
		return 0
	}

	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}

	entropy := 0.0
	length := float64(len(s))
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

type token struct {
	start int
	text  string
}

// extractTokens returns maximal runs of token characters of at least
// minLength bytes, with their byte offsets in the line.
func extractTokens(line string, minLength int) []token {
	var tokens []token
	start := -1
	for i := 0; i <= len(line); i++ {
		if i < len(line) && isTokenChar(line[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minLength {
			tokens = append(tokens, token{start: start, text: line[start:i]})
		}
		start = -1
	}
	return tokens
}

// isTokenChar treats base64/base64url and hex alphabets as token characters
// so that encoded secrets survive extraction intact.
func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '/', c == '=', c == '_', c == '-':
		return true
	}
	return false
}

func isHexToken(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !isHex {
			return false
		}
	}
	return len(s) > 0
}
