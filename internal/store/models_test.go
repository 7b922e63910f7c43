package store

import "testing"

func TestParseEnumsRejectUnknownValues(t *testing.T) {
	if _, err := ParseRecordSource("sap"); err == nil {
		t.Fatal("expected error for unknown record source")
	}
	if _, err := ParseAnomalyType("weird"); err == nil {
		t.Fatal("expected error for unknown anomaly type")
	}
	if _, err := ParseAnomalySeverity("urgent"); err == nil {
		t.Fatal("expected error for unknown severity")
	}
	if _, err := ParseReviewStatus("maybe"); err == nil {
		t.Fatal("expected error for unknown review status")
	}
	if _, err := ParseReviewItemType("invoice"); err == nil {
		t.Fatal("expected error for unknown review item type")
	}
	if _, err := ParseReconciliationStatus("done"); err == nil {
		t.Fatal("expected error for unknown reconciliation status")
	}

	if source, err := ParseRecordSource("tms"); err != nil || source != SourceTMS {
		t.Fatalf("ParseRecordSource(tms) = (%v, %v)", source, err)
	}
}

func TestReviewStatusTerminal(t *testing.T) {
	cases := []struct {
		status ReviewStatus
		want   bool
	}{
		{ReviewPending, false},
		{ReviewApproved, true},
		{ReviewRejected, true},
		{ReviewEscalated, true},
		{ReviewAutoApproved, true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.want {
			t.Fatalf("%s.Terminal() = %v, want %v", tc.status, got, tc.want)
		}
	}
}
