package match

import "fmt"

// lineItemAdmitThreshold is the minimum description score for a pairing to be
// accepted. Looser than the 0.5 "matched" threshold because quantity and
// price still contribute to the overall score.
const lineItemAdmitThreshold = 0.3

// LineItemMatch is the pairing outcome for one source line item. A nil
// TargetIndex means no acceptable counterpart was found.
type LineItemMatch struct {
	SourceIndex      *int     `json:"source_index"`
	TargetIndex      *int     `json:"target_index"`
	DescriptionScore float64  `json:"description_score"`
	QuantityScore    float64  `json:"quantity_score"`
	PriceScore       float64  `json:"price_score"`
	Overall          float64  `json:"overall"`
	Notes            []string `json:"notes,omitempty"`
}

// MatchLineItems pairs source line items against target line items.
//
// First-fit greedy: for each source item in original order, the best-scoring
// unconsumed target by description similarity wins, and that target can never
// be reused. The result depends on source order and is not a maximum-weight
// assignment.
func MatchLineItems(sourceItems, targetItems []LineItem, tol Tolerances) []LineItemMatch {
	results := make([]LineItemMatch, 0, len(sourceItems))
	usedTargets := make(map[int]bool)

	for srcIdx := range sourceItems {
		srcItem := &sourceItems[srcIdx]

		bestTarget := -1
		bestDescScore := 0.0
		for tgtIdx := range targetItems {
			if usedTargets[tgtIdx] {
				continue
			}
			_, descScore := MatchDescription(srcItem.Description, targetItems[tgtIdx].Description)
			if descScore > bestDescScore {
				bestDescScore = descScore
				bestTarget = tgtIdx
			}
		}

		idx := srcIdx
		if bestTarget < 0 || bestDescScore < lineItemAdmitThreshold {
			results = append(results, LineItemMatch{
				SourceIndex:      &idx,
				DescriptionScore: bestDescScore,
				Notes:            []string{fmt.Sprintf("No matching target line item found for source item %d", srcIdx)},
			})
			continue
		}

		usedTargets[bestTarget] = true
		tgtItem := &targetItems[bestTarget]

		_, qtyScore := MatchNumeric(srcItem.Quantity, tgtItem.Quantity, tol.QuantityPct, tol.QuantityAbs)
		_, priceScore := MatchNumeric(srcItem.UnitPrice, tgtItem.UnitPrice, tol.UnitPricePct, tol.UnitPriceAbs)

		overall := bestDescScore*0.3 + qtyScore*0.4 + priceScore*0.3

		var notes []string
		if qtyScore == 0 {
			notes = append(notes, fmt.Sprintf("Quantity mismatch: source=%s vs target=%s",
				formatOptional(srcItem.Quantity), formatOptional(tgtItem.Quantity)))
		}
		if priceScore == 0 {
			notes = append(notes, fmt.Sprintf("Price mismatch: source=%s vs target=%s",
				formatOptional(srcItem.UnitPrice), formatOptional(tgtItem.UnitPrice)))
		}

		target := bestTarget
		results = append(results, LineItemMatch{
			SourceIndex:      &idx,
			TargetIndex:      &target,
			DescriptionScore: bestDescScore,
			QuantityScore:    qtyScore,
			PriceScore:       priceScore,
			Overall:          round3(overall),
			Notes:            notes,
		})
	}

	return results
}

func formatOptional(v *float64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%g", *v)
}
