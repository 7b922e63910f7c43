package match

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestMatchNumeric(t *testing.T) {
	cases := []struct {
		name         string
		a, b         *float64
		tolPct       float64
		tolAbs       float64
		wantMatch    bool
		wantConf     float64
		confExactly  bool
	}{
		{"both absent", nil, nil, 0.05, 0, true, 1.0, true},
		{"only one present", fp(10), nil, 0.05, 0, false, 0.0, true},
		{"both zero", fp(0), fp(0), 0.05, 0, true, 1.0, true},
		{"one zero one not", fp(0), fp(5), 0.05, 0, false, 0.0, true},
		{"exact equality", fp(1500), fp(1500), 0.05, 0, true, 1.0, true},
		{"within pct tolerance", fp(100), fp(103), 0.05, 0, true, 0, false},
		{"outside pct but within abs", fp(10000), fp(10090), 0.005, 100, true, 0, false},
		{"outside both tolerances", fp(100), fp(150), 0.05, 1, false, 0.0, true},
	}
	for _, tc := range cases {
		gotMatch, gotConf := MatchNumeric(tc.a, tc.b, tc.tolPct, tc.tolAbs)
		if gotMatch != tc.wantMatch {
			t.Fatalf("%s: matched = %v, want %v", tc.name, gotMatch, tc.wantMatch)
		}
		if tc.confExactly && gotConf != tc.wantConf {
			t.Fatalf("%s: confidence = %v, want %v", tc.name, gotConf, tc.wantConf)
		}
		if gotMatch && (gotConf < 0.8 || gotConf > 1.0) {
			t.Fatalf("%s: matched confidence %v outside [0.8, 1.0]", tc.name, gotConf)
		}
	}
}

func TestMatchNumericIsSymmetric(t *testing.T) {
	pairs := [][2]*float64{
		{fp(100), fp(103)},
		{fp(0), fp(5)},
		{nil, fp(7)},
		{fp(2500), fp(2500)},
	}
	for _, p := range pairs {
		m1, c1 := MatchNumeric(p[0], p[1], 0.05, 1)
		m2, c2 := MatchNumeric(p[1], p[0], 0.05, 1)
		if m1 != m2 || math.Abs(c1-c2) > 1e-9 {
			t.Fatalf("MatchNumeric not symmetric: (%v,%v) vs (%v,%v)", m1, c1, m2, c2)
		}
	}
}

func TestMatchPartyName(t *testing.T) {
	cases := []struct {
		name      string
		a, b      string
		wantMatch bool
		wantConf  float64
	}{
		{"empty side", "", "Acme", false, 0.0},
		{"exact", "Acme Logistics", "Acme Logistics", true, 1.0},
		{"case and suffix insensitive", "ACME LOGISTICS LLC", "acme logistics", true, 1.0},
		{"punctuation stripped", "Pacific-Rim Freight, Inc.", "pacific rim freight", true, 1.0},
		{"containment", "Acme Logistics International", "Acme Logistics", true, 0.85},
		{"different companies", "Acme Logistics", "Globex Shipping", false, 0.0},
	}
	for _, tc := range cases {
		gotMatch, gotConf := MatchPartyName(tc.a, tc.b)
		if gotMatch != tc.wantMatch || gotConf != tc.wantConf {
			t.Fatalf("%s: MatchPartyName(%q, %q) = (%v, %v), want (%v, %v)",
				tc.name, tc.a, tc.b, gotMatch, gotConf, tc.wantMatch, tc.wantConf)
		}
	}
}

func TestMatchDescription(t *testing.T) {
	cases := []struct {
		name      string
		a, b      string
		wantMatch bool
	}{
		{"empty side", "", "ocean freight", false},
		{"identical", "ocean freight 40ft container", "ocean freight 40ft container", true},
		{"half overlap matches", "ocean freight charges", "ocean freight handling", true},
		{"low overlap", "ocean freight charges", "customs clearance fee", false},
	}
	for _, tc := range cases {
		gotMatch, gotConf := MatchDescription(tc.a, tc.b)
		if gotMatch != tc.wantMatch {
			t.Fatalf("%s: matched = %v, want %v (conf %v)", tc.name, gotMatch, tc.wantMatch, gotConf)
		}
		if gotConf < 0 || gotConf > 1 {
			t.Fatalf("%s: confidence %v outside [0, 1]", tc.name, gotConf)
		}
	}
}

func TestMatchDescriptionConfidenceBelowThresholdStillReported(t *testing.T) {
	matched, conf := MatchDescription("international ocean freight import charges", "ocean freight")
	if matched {
		t.Fatalf("expected no match for jaccard below 0.5, got match with conf %v", conf)
	}
	if conf == 0 {
		t.Fatal("expected nonzero similarity to be reported even below the match threshold")
	}
}
