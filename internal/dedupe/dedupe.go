package dedupe

import (
	"sort"

	"github.com/aleister1102/leakscout/internal/models"
)

// Dedupe merges overlapping findings for one line into a single
// authoritative finding per span. The tie-break policy is deliberate:
// signature findings always supersede entropy findings on overlap (a named
// rule match is strictly more informative than a raw entropy flag); among
// same-detector overlaps the higher confidence wins; exact ties keep the
// earliest-registered rule so results are deterministic. The function is
// idempotent: deduping its own output changes nothing.
func Dedupe(findings []models.Finding) []models.Finding {
	if len(findings) <= 1 {
		return sorted(findings)
	}

	ranked := make([]models.Finding, len(findings))
	copy(ranked, findings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return beats(ranked[i], ranked[j])
	})

	var kept []models.Finding
	for _, candidate := range ranked {
		overlapsKept := false
		for _, winner := range kept {
			if candidate.Overlaps(winner) {
				overlapsKept = true
				break
			}
		}
		if !overlapsKept {
			kept = append(kept, candidate)
		}
	}

	return sorted(kept)
}

// beats reports whether a should win over b when their spans overlap.
func beats(a, b models.Finding) bool {
	if a.Detector != b.Detector {
		return a.Detector == models.DetectorSignature
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.RuleIndex != b.RuleIndex {
		return a.RuleIndex < b.RuleIndex
	}
	// Equal priority: earlier span first, stable beyond that.
	if a.StartColumn != b.StartColumn {
		return a.StartColumn < b.StartColumn
	}
	return a.EndColumn > b.EndColumn
}

func sorted(findings []models.Finding) []models.Finding {
	out := make([]models.Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LineNumber != out[j].LineNumber {
			return out[i].LineNumber < out[j].LineNumber
		}
		if out[i].StartColumn != out[j].StartColumn {
			return out[i].StartColumn < out[j].StartColumn
		}
		return out[i].EndColumn < out[j].EndColumn
	})
	return out
}
