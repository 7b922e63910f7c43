// Package review owns human-review gating: the pure eligibility triggers and
// the review-queue state machine.
package review

import (
	"fmt"

	"github.com/harborline/freightaudit/internal/store"
)

// Policy holds the autonomy thresholds, injected by the caller.
type Policy struct {
	ConfidenceThreshold        float64
	AutoApproveDollarThreshold float64
	HighRiskDollarThreshold    float64
}

func DefaultPolicy() Policy {
	return Policy{
		ConfidenceThreshold:        0.85,
		AutoApproveDollarThreshold: 1000,
		HighRiskDollarThreshold:    10000,
	}
}

// ShouldReviewAllocation decides whether a cost allocation needs a human
// decision. Low minimum line-item confidence or a high-risk total both
// require review; everything else is auto-approved.
func ShouldReviewAllocation(totalAmount, minConfidence *float64, p Policy) (bool, string) {
	if minConfidence != nil && *minConfidence < p.ConfidenceThreshold {
		return true, fmt.Sprintf("Low confidence (%.2f < %g)", *minConfidence, p.ConfidenceThreshold)
	}
	if totalAmount != nil && *totalAmount >= p.HighRiskDollarThreshold {
		return true, fmt.Sprintf("High-value allocation ($%.2f >= $%.2f)", *totalAmount, p.HighRiskDollarThreshold)
	}
	return false, "Auto-approved"
}

// ShouldReviewAnomaly decides whether an anomaly flag needs a human decision.
// Medium severity and above is queued; low severity is informational only.
func ShouldReviewAnomaly(severity store.AnomalySeverity, anomalyType store.AnomalyType) (bool, string) {
	switch severity {
	case store.SeverityHigh, store.SeverityCritical:
		return true, fmt.Sprintf("High-severity anomaly: %s", anomalyType)
	case store.SeverityMedium:
		return true, fmt.Sprintf("Medium-severity anomaly: %s", anomalyType)
	}
	return false, "Low-severity, informational only"
}

// ShouldReviewReconciliation decides whether a reconciliation run needs a
// human decision: any mismatch, or a match rate below 90%.
func ShouldReviewReconciliation(mismatchCount, totalRecords int) (bool, string) {
	if mismatchCount > 0 {
		return true, fmt.Sprintf("%d mismatched records found", mismatchCount)
	}
	if totalRecords > 0 {
		// With mismatchCount handled above this rate is always 1.0 here; the
		// branch stays so the 90% rule is stated where it belongs.
		matchRate := float64(totalRecords-mismatchCount) / float64(totalRecords)
		if matchRate < 0.9 {
			return true, fmt.Sprintf("Low match rate (%.1f%%)", matchRate*100)
		}
	}
	return false, "All records matched"
}
