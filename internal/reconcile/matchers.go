// Package reconcile cross-references records from two systems of record
// (TMS shipments vs ERP general-ledger entries) and classifies each record's
// match status. The matchers here are pure functions.
package reconcile

import (
	"math"
	"strings"
	"time"
)

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// MatchByReference compares two reference numbers, case-insensitive and
// whitespace-trimmed.
func MatchByReference(refA, refB string) (bool, float64) {
	if refA == "" || refB == "" {
		return false, 0.0
	}
	if strings.EqualFold(strings.TrimSpace(refA), strings.TrimSpace(refB)) {
		return true, 1.0
	}
	return false, 0.0
}

// MatchByAmount compares two optional amounts within a relative tolerance.
// Confidence degrades linearly toward 0.8 at the tolerance boundary.
func MatchByAmount(amountA, amountB *float64, tolerancePct float64) (bool, float64) {
	if amountA == nil || amountB == nil {
		return false, 0.0
	}

	a, b := *amountA, *amountB
	if a == 0 && b == 0 {
		return true, 1.0
	}
	if a == 0 || b == 0 {
		return false, 0.0
	}

	diffPct := math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
	if diffPct > tolerancePct {
		return false, 0.0
	}
	return true, round3(1.0 - (diffPct/tolerancePct)*0.2)
}

// MatchByDate compares two ISO-format date strings within a day tolerance.
// Unparseable dates never match.
func MatchByDate(dateA, dateB string, toleranceDays int) (bool, float64) {
	if dateA == "" || dateB == "" {
		return false, 0.0
	}

	dtA, errA := parseISODate(dateA)
	dtB, errB := parseISODate(dateB)
	if errA != nil || errB != nil {
		return false, 0.0
	}

	diffDays := int(math.Abs(dtA.Sub(dtB).Hours()) / 24)
	if diffDays > toleranceDays {
		return false, 0.0
	}
	return true, round3(1.0 - (float64(diffDays)/float64(toleranceDays))*0.3)
}

func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Parse("2006-01-02", s)
}

// ComputeCompositeConfidence blends the three independent match signals into
// one score. Weights: reference 0.5, amount 0.3, date 0.2.
func ComputeCompositeConfidence(refScore, amountScore, dateScore float64) float64 {
	return round3(refScore*0.5 + amountScore*0.3 + dateScore*0.2)
}
