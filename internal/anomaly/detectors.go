// Package anomaly implements the rule- and statistics-based anomaly
// detectors and the flagger that orchestrates them. Every detector is a pure
// function: a nil result means no finding, never a fault.
package anomaly

import (
	"math"
	"strings"

	"github.com/harborline/freightaudit/internal/store"
	"gonum.org/v1/gonum/stat"
)

// minOutlierHistory is the smallest comparison population the outlier check
// will accept. Sparse history produces no flag, a deliberate false-negative
// bias.
const minOutlierHistory = 5

// ExistingInvoice is a previously seen invoice used for duplicate checks.
type ExistingInvoice struct {
	InvoiceNumber string `json:"invoice_number"`
	Vendor        string `json:"vendor"`
	Date          string `json:"date,omitempty"`
	DocumentID    string `json:"document_id"`
}

// DuplicateMatch describes a duplicate-invoice finding.
type DuplicateMatch struct {
	DuplicateOfDocumentID string `json:"duplicate_of_document_id"`
	OriginalDate          string `json:"original_date,omitempty"`
	InvoiceNumber         string `json:"invoice_number"`
	Vendor                string `json:"vendor"`
}

// DetectDuplicate reports the first existing invoice with the same invoice
// number and vendor, both case-insensitive.
func DetectDuplicate(invoiceNumber, vendor string, existing []ExistingInvoice) *DuplicateMatch {
	for _, inv := range existing {
		if strings.EqualFold(inv.InvoiceNumber, invoiceNumber) && strings.EqualFold(inv.Vendor, vendor) {
			return &DuplicateMatch{
				DuplicateOfDocumentID: inv.DocumentID,
				OriginalDate:          inv.Date,
				InvoiceNumber:         invoiceNumber,
				Vendor:                vendor,
			}
		}
	}
	return nil
}

// BudgetOverrun describes a budget-overrun finding. OverrunPct is expressed
// as a percentage.
type BudgetOverrun struct {
	ProjectCode    string  `json:"project_code"`
	BudgetAmount   float64 `json:"budget_amount"`
	SpentAmount    float64 `json:"spent_amount"`
	NewAmount      float64 `json:"new_amount"`
	ProjectedTotal float64 `json:"projected_total"`
	OverrunPct     float64 `json:"overrun_pct"`
}

// DetectBudgetOverrun reports whether adding newAmount would push a project
// past its budget by strictly more than threshold (0.1 = 10%; exactly at the
// threshold does not flag).
func DetectBudgetOverrun(projectCode string, newAmount, budgetAmount, spentAmount, threshold float64) *BudgetOverrun {
	if budgetAmount <= 0 {
		return nil
	}

	projectedTotal := spentAmount + newAmount
	overrunPct := (projectedTotal - budgetAmount) / budgetAmount

	if overrunPct <= threshold {
		return nil
	}
	return &BudgetOverrun{
		ProjectCode:    projectCode,
		BudgetAmount:   budgetAmount,
		SpentAmount:    spentAmount,
		NewAmount:      newAmount,
		ProjectedTotal: round2(projectedTotal),
		OverrunPct:     round1(overrunPct * 100),
	}
}

// ScoredLineItem is an allocation line with its assigned confidence.
type ScoredLineItem struct {
	Index       int
	Description string
	Amount      float64
	Confidence  float64
}

// LowConfidenceItem reports a line item below the confidence threshold and
// its shortfall.
type LowConfidenceItem struct {
	LineItemIndex int     `json:"line_item_index"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Confidence    float64 `json:"confidence"`
	Gap           float64 `json:"gap"`
}

// DetectLowConfidenceItems returns every line item whose confidence falls
// below the threshold.
func DetectLowConfidenceItems(items []ScoredLineItem, confidenceThreshold float64) []LowConfidenceItem {
	var flagged []LowConfidenceItem
	for _, item := range items {
		if item.Confidence < confidenceThreshold {
			flagged = append(flagged, LowConfidenceItem{
				LineItemIndex: item.Index,
				Description:   item.Description,
				Amount:        item.Amount,
				Confidence:    item.Confidence,
				Gap:           round3(confidenceThreshold - item.Confidence),
			})
		}
	}
	return flagged
}

// UnusualAmount describes a statistical outlier finding.
type UnusualAmount struct {
	Amount          float64 `json:"amount"`
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"std_dev"`
	ZScore          float64 `json:"z_score"`
	HistoricalCount int     `json:"historical_count"`
}

// DetectUnusualAmount flags amounts more than stdMultiplier population
// standard deviations from the historical mean. Fewer than five data points
// or a zero standard deviation produce no flag.
func DetectUnusualAmount(amount float64, historicalAmounts []float64, stdMultiplier float64) *UnusualAmount {
	if len(historicalAmounts) < minOutlierHistory {
		return nil
	}

	mean := stat.Mean(historicalAmounts, nil)
	stdDev := stat.PopStdDev(historicalAmounts, nil)
	if stdDev == 0 {
		return nil
	}

	zScore := math.Abs(amount-mean) / stdDev
	if zScore <= stdMultiplier {
		return nil
	}
	return &UnusualAmount{
		Amount:          amount,
		Mean:            round2(mean),
		StdDev:          round2(stdDev),
		ZScore:          round2(zScore),
		HistoricalCount: len(historicalAmounts),
	}
}

// MissingApproval describes a high-value allocation without sign-off.
type MissingApproval struct {
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
	Threshold   float64 `json:"threshold"`
}

// DetectMissingApproval flags an allocation whose total meets the high-risk
// threshold while its status is not yet approved.
func DetectMissingApproval(totalAmount *float64, status store.AllocationStatus, highRiskThreshold float64) *MissingApproval {
	if totalAmount == nil || *totalAmount < highRiskThreshold {
		return nil
	}
	if status == store.AllocationApproved {
		return nil
	}
	return &MissingApproval{
		TotalAmount: *totalAmount,
		Status:      string(status),
		Threshold:   highRiskThreshold,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
