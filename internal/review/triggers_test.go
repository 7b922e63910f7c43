package review

import (
	"testing"

	"github.com/harborline/freightaudit/internal/store"
)

func fp(v float64) *float64 { return &v }

func TestShouldReviewAllocation(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name       string
		total      *float64
		confidence *float64
		want       bool
	}{
		{"low confidence", fp(500), fp(0.60), true},
		{"high value", fp(25000), fp(0.99), true},
		{"confident and cheap", fp(500), fp(0.95), false},
		{"no signals", nil, nil, false},
		{"at confidence threshold", fp(500), fp(0.85), false},
		{"at dollar threshold", fp(10000), fp(0.95), true},
	}
	for _, tc := range cases {
		got, reason := ShouldReviewAllocation(tc.total, tc.confidence, p)
		if got != tc.want {
			t.Fatalf("%s: review = %v (%s), want %v", tc.name, got, reason, tc.want)
		}
		if reason == "" {
			t.Fatalf("%s: expected a reason", tc.name)
		}
	}
}

func TestShouldReviewAnomaly(t *testing.T) {
	cases := []struct {
		severity store.AnomalySeverity
		want     bool
	}{
		{store.SeverityLow, false},
		{store.SeverityMedium, true},
		{store.SeverityHigh, true},
		{store.SeverityCritical, true},
	}
	for _, tc := range cases {
		got, _ := ShouldReviewAnomaly(tc.severity, store.AnomalyDuplicateInvoice)
		if got != tc.want {
			t.Fatalf("severity %s: review = %v, want %v", tc.severity, got, tc.want)
		}
	}
}

func TestShouldReviewReconciliation(t *testing.T) {
	cases := []struct {
		name       string
		mismatches int
		total      int
		want       bool
	}{
		{"any mismatch", 1, 100, true},
		{"clean run", 0, 100, false},
		{"empty run", 0, 0, false},
	}
	for _, tc := range cases {
		got, _ := ShouldReviewReconciliation(tc.mismatches, tc.total)
		if got != tc.want {
			t.Fatalf("%s: review = %v, want %v", tc.name, got, tc.want)
		}
	}
}
