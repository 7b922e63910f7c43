package reconcile

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestMatchByReference(t *testing.T) {
	cases := []struct {
		name      string
		a, b      string
		wantMatch bool
	}{
		{"empty side", "", "SHP-1001", false},
		{"exact", "SHP-1001", "SHP-1001", true},
		{"case insensitive", "shp-1001", "SHP-1001", true},
		{"whitespace trimmed", "  SHP-1001 ", "SHP-1001", true},
		{"different refs", "SHP-1001", "SHP-1002", false},
	}
	for _, tc := range cases {
		gotMatch, gotConf := MatchByReference(tc.a, tc.b)
		if gotMatch != tc.wantMatch {
			t.Fatalf("%s: matched = %v, want %v", tc.name, gotMatch, tc.wantMatch)
		}
		if gotMatch && gotConf != 1.0 {
			t.Fatalf("%s: confidence = %v, want 1.0", tc.name, gotConf)
		}
	}
}

func TestMatchByAmount(t *testing.T) {
	cases := []struct {
		name      string
		a, b      *float64
		wantMatch bool
	}{
		{"nil side", nil, fp(100), false},
		{"both zero", fp(0), fp(0), true},
		{"one zero", fp(0), fp(100), false},
		{"exact", fp(4250), fp(4250), true},
		{"within tolerance", fp(1000), fp(1015), true},
		{"outside tolerance", fp(1000), fp(1100), false},
	}
	for _, tc := range cases {
		gotMatch, gotConf := MatchByAmount(tc.a, tc.b, 0.02)
		if gotMatch != tc.wantMatch {
			t.Fatalf("%s: matched = %v, want %v (conf %v)", tc.name, gotMatch, tc.wantMatch, gotConf)
		}
		if gotMatch && (gotConf < 0.8 || gotConf > 1.0) {
			t.Fatalf("%s: confidence %v outside [0.8, 1.0]", tc.name, gotConf)
		}
	}
}

func TestMatchByDate(t *testing.T) {
	cases := []struct {
		name      string
		a, b      string
		wantMatch bool
	}{
		{"empty side", "", "2026-03-01", false},
		{"same day", "2026-03-01", "2026-03-01", true},
		{"within tolerance", "2026-03-01", "2026-03-03", true},
		{"rfc3339 accepted", "2026-03-01T08:30:00Z", "2026-03-02", true},
		{"outside tolerance", "2026-03-01", "2026-03-10", false},
		{"unparseable", "03/01/2026", "2026-03-01", false},
	}
	for _, tc := range cases {
		gotMatch, _ := MatchByDate(tc.a, tc.b, 3)
		if gotMatch != tc.wantMatch {
			t.Fatalf("%s: matched = %v, want %v", tc.name, gotMatch, tc.wantMatch)
		}
	}
}

func TestComputeCompositeConfidence(t *testing.T) {
	cases := []struct {
		ref, amount, date float64
		want              float64
	}{
		{1.0, 1.0, 1.0, 1.0},
		{1.0, 0.0, 0.0, 0.5},
		{0.8, 0.6, 0.4, 0.66},
		{0.0, 0.0, 0.0, 0.0},
	}
	for _, tc := range cases {
		got := ComputeCompositeConfidence(tc.ref, tc.amount, tc.date)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ComputeCompositeConfidence(%v, %v, %v) = %v, want %v",
				tc.ref, tc.amount, tc.date, got, tc.want)
		}
	}
}
