// Package match implements the deterministic comparison primitives and the
// 3-way purchase-order / bill-of-lading / invoice match engine. Everything in
// scalar.go and lineitems.go is a pure function: absent data is a typed
// outcome, never an error.
package match

import (
	"math"
	"strings"
)

// legal-entity suffixes stripped during party name normalization
var legalSuffixes = []string{
	" llc", " inc", " inc.", " co", " co.", " ltd", " ltd.",
	" corp", " corp.", " corporation", " company",
	" limited", " gmbh", " sa", " s.a.",
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// MatchNumeric compares two optional numeric values within tolerance, using
// the more permissive of percentage or absolute tolerance. Both absent and
// both zero count as a match; a value present on only one side does not.
// Confidence degrades linearly from 1.0 at exact equality toward 0.8 at the
// tolerance boundary.
func MatchNumeric(a, b *float64, tolerancePct, toleranceAbs float64) (bool, float64) {
	if a == nil && b == nil {
		return true, 1.0
	}
	if a == nil || b == nil {
		return false, 0.0
	}

	valueA, valueB := *a, *b

	if valueA == 0 && valueB == 0 {
		return true, 1.0
	}
	if valueA == 0 || valueB == 0 {
		return false, 0.0
	}

	diff := math.Abs(valueA - valueB)
	maxVal := math.Max(math.Abs(valueA), math.Abs(valueB))
	diffPct := diff / maxVal

	withinPct := diffPct <= tolerancePct
	withinAbs := toleranceAbs > 0 && diff <= toleranceAbs

	if !withinPct && !withinAbs {
		return false, 0.0
	}

	if diff == 0 {
		return true, 1.0
	}
	ratio := 0.0
	if tolerancePct > 0 {
		ratio = math.Min(diffPct/tolerancePct, 1.0)
	}
	return true, round3(1.0 - ratio*0.2)
}

func normalizePartyName(name string) string {
	n := strings.TrimSpace(strings.ToLower(name))
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(n, suffix) {
			n = strings.TrimSpace(n[:len(n)-len(suffix)])
		}
	}
	n = strings.NewReplacer(",", "", ".", "", "-", " ").Replace(n)
	return strings.Join(strings.Fields(n), " ")
}

// MatchPartyName fuzzy-matches two organization names. Names are lowercased,
// stripped of legal-entity suffixes and punctuation, and whitespace-collapsed
// before comparison. Exact normalized equality scores 1.0, substring
// containment either way scores 0.85.
func MatchPartyName(nameA, nameB string) (bool, float64) {
	if nameA == "" || nameB == "" {
		return false, 0.0
	}

	normA := normalizePartyName(nameA)
	normB := normalizePartyName(nameB)

	if normA == "" || normB == "" {
		return false, 0.0
	}
	if normA == normB {
		return true, 1.0
	}
	if strings.Contains(normA, normB) || strings.Contains(normB, normA) {
		return true, 0.85
	}
	return false, 0.0
}

// MatchDescription scores two item descriptions by Jaccard similarity over
// lowercase word tokens. The similarity is returned as the confidence even
// below the 0.5 match threshold, so callers can use it as a tie-break signal.
func MatchDescription(descA, descB string) (bool, float64) {
	if descA == "" || descB == "" {
		return false, 0.0
	}

	wordsA := tokenSet(descA)
	wordsB := tokenSet(descB)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false, 0.0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection

	jaccard := float64(intersection) / float64(union)
	return jaccard >= 0.5, round3(jaccard)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}
