package match

import (
	"reflect"
	"testing"
)

func TestComputeThreeWayMatchIncompleteWithTwoMissing(t *testing.T) {
	invoice := &Document{Seller: "Acme Logistics", TotalAmount: fp(5000)}

	result := ComputeThreeWayMatch(nil, nil, invoice, DefaultTolerances())

	if result.Status != StatusIncomplete {
		t.Fatalf("status = %s, want %s", result.Status, StatusIncomplete)
	}
	if len(result.MissingDocuments) != 2 {
		t.Fatalf("missing documents = %v, want 2 entries", result.MissingDocuments)
	}
	if len(result.FieldMatches) != 0 {
		t.Fatalf("expected no field comparisons with two documents missing, got %d", len(result.FieldMatches))
	}
	if result.OverallConfidence != 0 {
		t.Fatalf("overall confidence = %v, want 0", result.OverallConfidence)
	}
}

func TestComputeThreeWayMatchFullMatch(t *testing.T) {
	po := &Document{
		Supplier:    "Acme Logistics LLC",
		TotalAmount: fp(12500),
		LineItems: []LineItem{
			{Description: "ocean freight 40ft container", Quantity: fp(2), UnitPrice: fp(5000)},
			{Description: "destination port handling", Quantity: fp(1), UnitPrice: fp(2500)},
		},
	}
	bol := &Document{GrossWeight: fp(18200), WeightUnit: "kg"}
	invoice := &Document{
		Seller:      "Acme Logistics",
		TotalAmount: fp(12500),
		LineItems: []LineItem{
			{Description: "ocean freight 40ft container", Quantity: fp(2), UnitPrice: fp(5000)},
			{Description: "destination port handling", Quantity: fp(1), UnitPrice: fp(2500)},
		},
	}

	result := ComputeThreeWayMatch(po, bol, invoice, DefaultTolerances())

	if result.Status != StatusFullMatch {
		t.Fatalf("status = %s, want %s", result.Status, StatusFullMatch)
	}
	if result.OverallConfidence < 0.8 {
		t.Fatalf("overall confidence = %v, want >= 0.8", result.OverallConfidence)
	}
	if len(result.FieldMatches) != 2 {
		t.Fatalf("field matches = %d, want 2 (party_name, total_amount)", len(result.FieldMatches))
	}
	if len(result.LineItemMatches) != 2 {
		t.Fatalf("line item matches = %d, want 2", len(result.LineItemMatches))
	}
	if len(result.Notes) != 1 {
		t.Fatalf("notes = %v, want one gross-weight note", result.Notes)
	}
}

func TestComputeThreeWayMatchMismatchedAmounts(t *testing.T) {
	po := &Document{Supplier: "Acme Logistics", TotalAmount: fp(10000)}
	invoice := &Document{Seller: "Globex Shipping", TotalAmount: fp(25000)}

	result := ComputeThreeWayMatch(po, nil, invoice, DefaultTolerances())

	if result.Status != StatusIncomplete {
		t.Fatalf("status = %s, want %s (one document missing)", result.Status, StatusIncomplete)
	}
	for _, fm := range result.FieldMatches {
		if fm.Matched {
			t.Fatalf("field %s unexpectedly matched", fm.FieldName)
		}
	}
}

func TestComputeThreeWayMatchIsDeterministic(t *testing.T) {
	po := &Document{
		Supplier:    "Acme Logistics",
		TotalAmount: fp(7500),
		LineItems: []LineItem{
			{Description: "ocean freight", Quantity: fp(1), UnitPrice: fp(7500)},
		},
	}
	bol := &Document{TotalGrossWeight: fp(900), WeightUnit: "kg"}
	invoice := &Document{
		Seller:      "Acme Logistics",
		TotalAmount: fp(7600),
		LineItems: []LineItem{
			{Description: "ocean freight", Quantity: fp(1), UnitPrice: fp(7600)},
		},
	}

	first := ComputeThreeWayMatch(po, bol, invoice, DefaultTolerances())
	second := ComputeThreeWayMatch(po, bol, invoice, DefaultTolerances())

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different results")
	}
}
