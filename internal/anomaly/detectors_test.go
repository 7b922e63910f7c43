package anomaly

import (
	"testing"

	"github.com/harborline/freightaudit/internal/store"
)

func fp(v float64) *float64 { return &v }

func TestDetectDuplicate(t *testing.T) {
	existing := []ExistingInvoice{
		{InvoiceNumber: "INV-2041", Vendor: "Acme Logistics", Date: "2026-02-10", DocumentID: "doc-1"},
		{InvoiceNumber: "INV-9999", Vendor: "Globex Shipping", DocumentID: "doc-2"},
	}

	cases := []struct {
		name    string
		invoice string
		vendor  string
		wantDup bool
	}{
		{"exact duplicate", "INV-2041", "Acme Logistics", true},
		{"case insensitive", "inv-2041", "ACME LOGISTICS", true},
		{"same invoice different vendor", "INV-2041", "Globex Shipping", false},
		{"no collision", "INV-5555", "Acme Logistics", false},
	}
	for _, tc := range cases {
		dup := DetectDuplicate(tc.invoice, tc.vendor, existing)
		if (dup != nil) != tc.wantDup {
			t.Fatalf("%s: duplicate = %v, want %v", tc.name, dup != nil, tc.wantDup)
		}
		if dup != nil && dup.DuplicateOfDocumentID != "doc-1" {
			t.Fatalf("%s: duplicate of %s, want doc-1", tc.name, dup.DuplicateOfDocumentID)
		}
	}
}

func TestDetectBudgetOverrun(t *testing.T) {
	// 90000 spent + 20000 new = 110000 against 100000 is exactly 10% over:
	// at the threshold, not past it.
	if got := DetectBudgetOverrun("PRJ-100", 20000, 100000, 90000, 0.10); got != nil {
		t.Fatalf("exactly at threshold should not flag, got %+v", got)
	}

	got := DetectBudgetOverrun("PRJ-100", 50000, 100000, 65000, 0.10)
	if got == nil {
		t.Fatal("expected an overrun flag")
	}
	if got.ProjectedTotal != 115000 {
		t.Fatalf("projected total = %v, want 115000", got.ProjectedTotal)
	}
	if got.OverrunPct != 15.0 {
		t.Fatalf("overrun pct = %v, want 15.0", got.OverrunPct)
	}

	if got := DetectBudgetOverrun("PRJ-100", 50000, 0, 0, 0.10); got != nil {
		t.Fatalf("zero budget should not flag, got %+v", got)
	}
}

func TestDetectLowConfidenceItems(t *testing.T) {
	items := []ScoredLineItem{
		{Index: 0, Description: "ocean freight", Amount: 5000, Confidence: 0.95},
		{Index: 1, Description: "port handling", Amount: 1200, Confidence: 0.60},
		{Index: 2, Description: "customs fee", Amount: 300, Confidence: 0.84},
	}

	flagged := DetectLowConfidenceItems(items, 0.85)
	if len(flagged) != 2 {
		t.Fatalf("flagged = %d, want 2", len(flagged))
	}
	if flagged[0].LineItemIndex != 1 || flagged[1].LineItemIndex != 2 {
		t.Fatalf("flagged indexes = %d, %d, want 1, 2", flagged[0].LineItemIndex, flagged[1].LineItemIndex)
	}
	if flagged[0].Gap != 0.25 {
		t.Fatalf("gap = %v, want 0.25", flagged[0].Gap)
	}

	if flagged := DetectLowConfidenceItems(items, 0.5); flagged != nil {
		t.Fatalf("no items below 0.5, got %+v", flagged)
	}
}

func TestDetectUnusualAmount(t *testing.T) {
	history := []float64{100, 110, 105, 95, 100, 108, 102, 98, 107, 103}

	if got := DetectUnusualAmount(105, history, 3.0); got != nil {
		t.Fatalf("105 is within 3 standard deviations, got %+v", got)
	}

	got := DetectUnusualAmount(500, history, 3.0)
	if got == nil {
		t.Fatal("500 should be flagged as an outlier")
	}
	if got.Mean != 102.8 {
		t.Fatalf("mean = %v, want 102.8", got.Mean)
	}
	if got.HistoricalCount != 10 {
		t.Fatalf("historical count = %d, want 10", got.HistoricalCount)
	}
	if got.ZScore <= 3.0 {
		t.Fatalf("z-score = %v, want > 3.0", got.ZScore)
	}

	if got := DetectUnusualAmount(500, []float64{100, 100, 100}, 3.0); got != nil {
		t.Fatalf("fewer than 5 data points should not flag, got %+v", got)
	}
	if got := DetectUnusualAmount(500, []float64{100, 100, 100, 100, 100}, 3.0); got != nil {
		t.Fatalf("zero standard deviation should not flag, got %+v", got)
	}
}

func TestDetectMissingApproval(t *testing.T) {
	if got := DetectMissingApproval(nil, store.AllocationPending, 10000); got != nil {
		t.Fatalf("nil amount should not flag, got %+v", got)
	}
	if got := DetectMissingApproval(fp(9999), store.AllocationPending, 10000); got != nil {
		t.Fatalf("below threshold should not flag, got %+v", got)
	}
	if got := DetectMissingApproval(fp(15000), store.AllocationApproved, 10000); got != nil {
		t.Fatalf("approved allocation should not flag, got %+v", got)
	}

	got := DetectMissingApproval(fp(10000), store.AllocationAllocated, 10000)
	if got == nil {
		t.Fatal("at-threshold unapproved allocation should flag")
	}
	if got.TotalAmount != 10000 || got.Status != "allocated" {
		t.Fatalf("unexpected finding: %+v", got)
	}
}
