package match

import "fmt"

// Status classifies a 3-way match outcome. It is always derived from the
// scores, never set directly.
type Status string

const (
	StatusFullMatch    Status = "full_match"
	StatusPartialMatch Status = "partial_match"
	StatusMismatch     Status = "mismatch"
	StatusIncomplete   Status = "incomplete"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusFullMatch, StatusPartialMatch, StatusMismatch, StatusIncomplete:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// Tolerances configures the numeric comparison thresholds for a match run.
// Injected by the caller; DefaultTolerances gives the standard values.
type Tolerances struct {
	QuantityPct    float64 `json:"quantity_pct"`
	QuantityAbs    float64 `json:"quantity_abs"`
	UnitPricePct   float64 `json:"unit_price_pct"`
	UnitPriceAbs   float64 `json:"unit_price_abs"`
	TotalAmountPct float64 `json:"total_amount_pct"`
	TotalAmountAbs float64 `json:"total_amount_abs"`
}

func DefaultTolerances() Tolerances {
	return Tolerances{
		QuantityPct:    0.05,
		QuantityAbs:    1,
		UnitPricePct:   0.03,
		UnitPriceAbs:   0.01,
		TotalAmountPct: 0.05,
		TotalAmountAbs: 100,
	}
}

// FieldMatch is the outcome of comparing a single field across documents.
type FieldMatch struct {
	FieldName    string      `json:"field_name"`
	Matched      bool        `json:"matched"`
	Confidence   float64     `json:"confidence"`
	POValue      interface{} `json:"po_value,omitempty"`
	BOLValue     interface{} `json:"bol_value,omitempty"`
	InvoiceValue interface{} `json:"invoice_value,omitempty"`
	Note         string      `json:"note,omitempty"`
}

// Result is a complete 3-way match verdict.
type Result struct {
	Status            Status          `json:"status"`
	OverallConfidence float64         `json:"overall_confidence"`
	FieldMatches      []FieldMatch    `json:"field_matches"`
	LineItemMatches   []LineItemMatch `json:"line_item_matches"`
	MissingDocuments  []string        `json:"missing_documents"`
	Notes             []string        `json:"notes"`
}

// ComputeThreeWayMatch compares up to three documents: purchase order,
// bill of lading / packing list, and commercial invoice.
//
// With two or more documents absent the result is incomplete and no partial
// comparison is attempted. Party name, total amount, and line items are
// compared between PO and invoice. BOL data currently contributes only an
// informational gross-weight note, not a scored field.
func ComputeThreeWayMatch(po, bol, invoice *Document, tol Tolerances) Result {
	var fieldMatches []FieldMatch
	var lineItemMatches []LineItemMatch
	var missing []string
	var notes []string

	if po == nil {
		missing = append(missing, "purchase_order")
	}
	if bol == nil {
		missing = append(missing, "bill_of_lading_or_packing_list")
	}
	if invoice == nil {
		missing = append(missing, "commercial_invoice")
	}

	if len(missing) >= 2 {
		return Result{
			Status:           StatusIncomplete,
			MissingDocuments: missing,
			Notes:            []string{"At least 2 of 3 documents are required for matching"},
		}
	}

	if po != nil && invoice != nil {
		poSupplier := string(po.Supplier)
		invSeller := string(invoice.Seller)
		matched, conf := MatchPartyName(poSupplier, invSeller)
		fieldMatches = append(fieldMatches, FieldMatch{
			FieldName:    "party_name",
			Matched:      matched,
			Confidence:   conf,
			POValue:      poSupplier,
			InvoiceValue: invSeller,
		})

		matched, conf = MatchNumeric(po.TotalAmount, invoice.TotalAmount, tol.TotalAmountPct, tol.TotalAmountAbs)
		fieldMatches = append(fieldMatches, FieldMatch{
			FieldName:    "total_amount",
			Matched:      matched,
			Confidence:   conf,
			POValue:      po.TotalAmount,
			InvoiceValue: invoice.TotalAmount,
		})

		if len(po.LineItems) > 0 && len(invoice.LineItems) > 0 {
			lineItemMatches = MatchLineItems(po.LineItems, invoice.LineItems, tol)
		}
	}

	if bol != nil {
		weight := bol.GrossWeight
		if weight == nil {
			weight = bol.TotalGrossWeight
		}
		if weight != nil && invoice != nil {
			notes = append(notes, fmt.Sprintf("BOL gross weight: %g %s", *weight, bol.WeightUnit))
		}
	}

	var scores []float64
	for _, fm := range fieldMatches {
		if fm.Matched {
			scores = append(scores, fm.Confidence)
		}
	}
	for _, lm := range lineItemMatches {
		if lm.Overall > 0 {
			scores = append(scores, lm.Overall)
		}
	}

	var status Status
	var overall float64

	sum := 0.0
	for _, s := range scores {
		sum += s
	}

	switch {
	case len(missing) > 0:
		status = StatusIncomplete
		if len(scores) > 0 {
			overall = sum / float64(len(scores))
		}
	case len(scores) == 0:
		status = StatusMismatch
	default:
		overall = sum / float64(len(scores))

		allMatched := true
		for _, fm := range fieldMatches {
			if !fm.Matched {
				allMatched = false
				break
			}
		}
		for _, lm := range lineItemMatches {
			if lm.Overall < 0.5 {
				allMatched = false
				break
			}
		}

		switch {
		case allMatched && overall >= 0.8:
			status = StatusFullMatch
		case overall >= 0.5:
			status = StatusPartialMatch
		default:
			status = StatusMismatch
		}
	}

	return Result{
		Status:            status,
		OverallConfidence: round3(overall),
		FieldMatches:      fieldMatches,
		LineItemMatches:   lineItemMatches,
		MissingDocuments:  missing,
		Notes:             notes,
	}
}
