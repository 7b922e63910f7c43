package match

import "testing"

func TestMatchLineItemsNeverReusesTargets(t *testing.T) {
	source := []LineItem{
		{Description: "ocean freight charge", Quantity: fp(1), UnitPrice: fp(5000)},
		{Description: "ocean freight charge", Quantity: fp(1), UnitPrice: fp(5000)},
	}
	target := []LineItem{
		{Description: "ocean freight charge", Quantity: fp(1), UnitPrice: fp(5000)},
	}

	results := MatchLineItems(source, target, DefaultTolerances())
	if len(results) != 2 {
		t.Fatalf("results = %d, want one per source item", len(results))
	}

	seen := make(map[int]bool)
	for _, r := range results {
		if r.TargetIndex == nil {
			continue
		}
		if seen[*r.TargetIndex] {
			t.Fatalf("target index %d paired twice", *r.TargetIndex)
		}
		seen[*r.TargetIndex] = true
	}
	if results[1].TargetIndex != nil {
		t.Fatal("second source item should be unmatched once the only target is consumed")
	}
	if len(results[1].Notes) == 0 {
		t.Fatal("unmatched source item should carry an explanatory note")
	}
}

func TestMatchLineItemsScoresAndMismatchNotes(t *testing.T) {
	source := []LineItem{
		{Description: "destination port handling", Quantity: fp(10), UnitPrice: fp(25)},
	}
	target := []LineItem{
		{Description: "destination port handling", Quantity: fp(50), UnitPrice: fp(25)},
	}

	results := MatchLineItems(source, target, DefaultTolerances())
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	r := results[0]
	if r.TargetIndex == nil {
		t.Fatal("expected a pairing on identical descriptions")
	}
	if r.DescriptionScore != 1.0 {
		t.Fatalf("description score = %v, want 1.0", r.DescriptionScore)
	}
	if r.QuantityScore != 0 {
		t.Fatalf("quantity score = %v, want 0 for 10 vs 50", r.QuantityScore)
	}
	if r.PriceScore != 1.0 {
		t.Fatalf("price score = %v, want 1.0", r.PriceScore)
	}
	// overall = 1.0*0.3 + 0*0.4 + 1.0*0.3
	if r.Overall != 0.6 {
		t.Fatalf("overall = %v, want 0.6", r.Overall)
	}
	if len(r.Notes) != 1 {
		t.Fatalf("notes = %v, want one quantity mismatch note", r.Notes)
	}
}

// First-fit pairing consumes targets in source order, so reordering the
// source list can change which items pair. This pins that behavior.
func TestMatchLineItemsIsOrderSensitive(t *testing.T) {
	generic := LineItem{Description: "freight service charge", Quantity: fp(1), UnitPrice: fp(100)}
	specific := LineItem{Description: "freight service charge expedited handling", Quantity: fp(1), UnitPrice: fp(900)}
	target := []LineItem{
		{Description: "freight service charge expedited handling", Quantity: fp(1), UnitPrice: fp(900)},
	}

	genericFirst := MatchLineItems([]LineItem{generic, specific}, target, DefaultTolerances())
	specificFirst := MatchLineItems([]LineItem{specific, generic}, target, DefaultTolerances())

	if genericFirst[0].TargetIndex == nil {
		t.Fatal("generic-first: expected the generic item to consume the target")
	}
	if specificFirst[0].TargetIndex == nil || *specificFirst[0].TargetIndex != 0 {
		t.Fatal("specific-first: expected the specific item to consume the target")
	}
	if genericFirst[0].Overall == specificFirst[0].Overall {
		t.Fatal("expected different pairings to produce different scores")
	}
}
