package anomaly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/freightaudit/internal/logger"
	"github.com/harborline/freightaudit/internal/match"
	"github.com/harborline/freightaudit/internal/review"
	"github.com/harborline/freightaudit/internal/store"
)

// Limits on how much history the store-backed checks pull per allocation.
const (
	duplicateLookupLimit = 200
	historyLookupLimit   = 100
)

// Config holds the detection thresholds, injected by the caller.
type Config struct {
	BudgetOverrunThreshold  float64
	DuplicateWindowDays     int
	ConfidenceThreshold     float64
	HighRiskDollarThreshold float64
	OutlierStdMultiplier    float64
}

func DefaultConfig() Config {
	return Config{
		BudgetOverrunThreshold:  0.10,
		DuplicateWindowDays:     90,
		ConfidenceThreshold:     0.85,
		HighRiskDollarThreshold: 10000,
		OutlierStdMultiplier:    3.0,
	}
}

// Flagger runs every detector over cost allocations, persists the resulting
// flags, and queues the ones that need a human decision.
type Flagger struct {
	storage *store.Storage
	queue   *review.Queue
	cfg     Config
	log     *logger.Logger
}

func NewFlagger(storage *store.Storage, queue *review.Queue, cfg Config, log *logger.Logger) *Flagger {
	return &Flagger{storage: storage, queue: queue, cfg: cfg, log: log}
}

// extractionPayload is the slice of an extraction the detectors consume.
// Party fields accept either a plain string or an object with a name.
type extractionPayload struct {
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	Vendor        match.PartyName `json:"vendor"`
	Shipper       match.PartyName `json:"shipper"`
	Seller        match.PartyName `json:"seller"`
	TotalAmount   *float64        `json:"total_amount"`
}

// vendorName returns the first party identity present on the extraction.
func (p extractionPayload) vendorName() string {
	for _, name := range []match.PartyName{p.Vendor, p.Shipper, p.Seller} {
		if name != "" {
			return string(name)
		}
	}
	return ""
}

// Scan runs all detectors over allocations, scoped to one document when
// documentID is non-nil. Every finding is persisted as an anomaly flag; flags
// of medium severity and above also get a linked review item.
func (f *Flagger) Scan(ctx context.Context, documentID *uuid.UUID) ([]store.AnomalyFlag, error) {
	const component = "AnomalyFlagger"

	allocations, err := f.storage.Allocations.ListAllocations(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load allocations: %w", err)
	}
	f.log.Info(component, "Scanning %d allocation(s)", len(allocations))

	var flags []*store.AnomalyFlag
	for i := range allocations {
		alloc := &allocations[i]

		payload, err := f.loadExtraction(ctx, alloc)
		if err != nil {
			return nil, err
		}

		found, err := f.runDetectors(ctx, alloc, payload)
		if err != nil {
			return nil, err
		}
		flags = append(flags, found...)
	}

	result := make([]store.AnomalyFlag, 0, len(flags))
	for _, flag := range flags {
		flag.ID = uuid.New()
		if err := f.storage.Anomalies.InsertFlag(ctx, flag); err != nil {
			return nil, err
		}
		if err := f.queueFlag(ctx, flag); err != nil {
			return nil, err
		}
		result = append(result, *flag)
	}

	f.log.Info(component, "Scan produced %d flag(s)", len(result))
	return result, nil
}

// loadExtraction resolves the latest extraction for an allocation's document.
// A missing document or extraction is not an error: payload-driven detectors
// just skip.
func (f *Flagger) loadExtraction(ctx context.Context, alloc *store.CostAllocation) (*extractionPayload, error) {
	if alloc.DocumentID == nil {
		return nil, nil
	}
	ext, err := f.storage.Extractions.GetLatestByDocument(ctx, *alloc.DocumentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			f.log.Warn("AnomalyFlagger", "No extraction for document %s, skipping payload checks", alloc.DocumentID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load extraction: %w", err)
	}

	var payload extractionPayload
	if err := json.Unmarshal(ext.Data, &payload); err != nil {
		f.log.Warn("AnomalyFlagger", "Malformed extraction data for document %s: %v", alloc.DocumentID, err)
		return nil, nil
	}
	return &payload, nil
}

func (f *Flagger) runDetectors(ctx context.Context, alloc *store.CostAllocation, payload *extractionPayload) ([]*store.AnomalyFlag, error) {
	var flags []*store.AnomalyFlag

	dup, err := f.checkDuplicate(ctx, alloc, payload)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		flags = append(flags, dup)
	}

	overruns, err := f.checkBudgetOverruns(ctx, alloc)
	if err != nil {
		return nil, err
	}
	flags = append(flags, overruns...)

	if lowConf := f.checkLowConfidence(alloc); lowConf != nil {
		flags = append(flags, lowConf)
	}

	outlier, err := f.checkUnusualAmount(ctx, alloc, payload)
	if err != nil {
		return nil, err
	}
	if outlier != nil {
		flags = append(flags, outlier)
	}

	if missing := f.checkMissingApproval(alloc); missing != nil {
		flags = append(flags, missing)
	}

	return flags, nil
}

func (f *Flagger) checkDuplicate(ctx context.Context, alloc *store.CostAllocation, payload *extractionPayload) (*store.AnomalyFlag, error) {
	if payload == nil || payload.InvoiceNumber == "" || payload.vendorName() == "" {
		return nil, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -f.cfg.DuplicateWindowDays)
	recent, err := f.storage.Extractions.ListRecent(ctx, alloc.DocumentID, since, duplicateLookupLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent extractions: %w", err)
	}

	existing := make([]ExistingInvoice, 0, len(recent))
	for _, ext := range recent {
		var p extractionPayload
		if err := json.Unmarshal(ext.Data, &p); err != nil {
			continue
		}
		if p.InvoiceNumber == "" {
			continue
		}
		existing = append(existing, ExistingInvoice{
			InvoiceNumber: p.InvoiceNumber,
			Vendor:        p.vendorName(),
			Date:          p.InvoiceDate,
			DocumentID:    ext.DocumentID.String(),
		})
	}

	dup := DetectDuplicate(payload.InvoiceNumber, payload.vendorName(), existing)
	if dup == nil {
		return nil, nil
	}

	details, err := json.Marshal(dup)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal duplicate details: %w", err)
	}
	desc := fmt.Sprintf("Invoice %s from %s matches a previously processed document", dup.InvoiceNumber, dup.Vendor)
	return &store.AnomalyFlag{
		DocumentID:   alloc.DocumentID,
		AllocationID: &alloc.ID,
		AnomalyType:  store.AnomalyDuplicateInvoice,
		Severity:     store.SeverityHigh,
		Title:        fmt.Sprintf("Possible duplicate invoice %s", dup.InvoiceNumber),
		Description:  &desc,
		Details:      details,
	}, nil
}

func (f *Flagger) checkBudgetOverruns(ctx context.Context, alloc *store.CostAllocation) ([]*store.AnomalyFlag, error) {
	byProject := make(map[string]float64)
	for _, item := range alloc.LineItems {
		code := effectiveProjectCode(item)
		if code == "" {
			continue
		}
		byProject[code] += item.Amount
	}

	var flags []*store.AnomalyFlag
	for code, amount := range byProject {
		budget, err := f.storage.Budgets.GetByProjectCode(ctx, code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load budget for %s: %w", code, err)
		}

		overrun := DetectBudgetOverrun(code, amount, budget.BudgetAmount, budget.SpentAmount, f.cfg.BudgetOverrunThreshold)
		if overrun == nil {
			continue
		}

		severity := store.SeverityMedium
		if overrun.OverrunPct > 20 {
			severity = store.SeverityHigh
		}
		details, err := json.Marshal(overrun)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal overrun details: %w", err)
		}
		desc := fmt.Sprintf("Allocating $%.2f to %s would exceed its budget of $%.2f by %.1f%%",
			amount, code, budget.BudgetAmount, overrun.OverrunPct)
		flags = append(flags, &store.AnomalyFlag{
			DocumentID:   alloc.DocumentID,
			AllocationID: &alloc.ID,
			AnomalyType:  store.AnomalyBudgetOverrun,
			Severity:     severity,
			Title:        fmt.Sprintf("Budget overrun on project %s", code),
			Description:  &desc,
			Details:      details,
		})
	}
	return flags, nil
}

func (f *Flagger) checkLowConfidence(alloc *store.CostAllocation) *store.AnomalyFlag {
	items := make([]ScoredLineItem, 0, len(alloc.LineItems))
	for _, item := range alloc.LineItems {
		if item.Confidence == nil {
			continue
		}
		items = append(items, ScoredLineItem{
			Index:       item.LineItemIndex,
			Description: item.Description,
			Amount:      item.Amount,
			Confidence:  *item.Confidence,
		})
	}

	flagged := DetectLowConfidenceItems(items, f.cfg.ConfidenceThreshold)
	if len(flagged) == 0 {
		return nil
	}

	total := 0.0
	for _, item := range flagged {
		total += item.Amount
	}
	details, err := json.Marshal(map[string]interface{}{
		"threshold":      f.cfg.ConfidenceThreshold,
		"flagged_items":  flagged,
		"flagged_amount": round2(total),
	})
	if err != nil {
		details = nil
	}
	desc := fmt.Sprintf("%d line item(s) totaling $%.2f were allocated below the %.2f confidence threshold",
		len(flagged), total, f.cfg.ConfidenceThreshold)
	return &store.AnomalyFlag{
		DocumentID:   alloc.DocumentID,
		AllocationID: &alloc.ID,
		AnomalyType:  store.AnomalyMisallocatedCost,
		Severity:     store.SeverityMedium,
		Title:        fmt.Sprintf("%d low-confidence allocation line(s)", len(flagged)),
		Description:  &desc,
		Details:      details,
	}
}

func (f *Flagger) checkUnusualAmount(ctx context.Context, alloc *store.CostAllocation, payload *extractionPayload) (*store.AnomalyFlag, error) {
	if payload == nil || payload.TotalAmount == nil || payload.vendorName() == "" {
		return nil, nil
	}

	history, err := f.storage.Extractions.HistoricalAmounts(ctx, payload.vendorName(), historyLookupLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load historical amounts: %w", err)
	}

	outlier := DetectUnusualAmount(*payload.TotalAmount, history, f.cfg.OutlierStdMultiplier)
	if outlier == nil {
		return nil, nil
	}

	details, err := json.Marshal(outlier)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outlier details: %w", err)
	}
	desc := fmt.Sprintf("Amount $%.2f is %.2f standard deviations from the vendor mean of $%.2f (n=%d)",
		outlier.Amount, outlier.ZScore, outlier.Mean, outlier.HistoricalCount)
	return &store.AnomalyFlag{
		DocumentID:   alloc.DocumentID,
		AllocationID: &alloc.ID,
		AnomalyType:  store.AnomalyUnusualAmount,
		Severity:     store.SeverityMedium,
		Title:        fmt.Sprintf("Unusual amount for %s: $%.2f", payload.vendorName(), outlier.Amount),
		Description:  &desc,
		Details:      details,
	}, nil
}

func (f *Flagger) checkMissingApproval(alloc *store.CostAllocation) *store.AnomalyFlag {
	missing := DetectMissingApproval(alloc.TotalAmount, alloc.Status, f.cfg.HighRiskDollarThreshold)
	if missing == nil {
		return nil
	}

	details, err := json.Marshal(missing)
	if err != nil {
		details = nil
	}
	desc := fmt.Sprintf("Allocation of $%.2f is at or above the $%.2f approval threshold but its status is %s",
		missing.TotalAmount, missing.Threshold, missing.Status)
	return &store.AnomalyFlag{
		DocumentID:   alloc.DocumentID,
		AllocationID: &alloc.ID,
		AnomalyType:  store.AnomalyMissingApproval,
		Severity:     store.SeverityHigh,
		Title:        fmt.Sprintf("High-value allocation missing approval ($%.2f)", missing.TotalAmount),
		Description:  &desc,
		Details:      details,
	}
}

// queueFlag creates a linked review item for flags the triggers deem
// review-worthy, with back-references in both directions.
func (f *Flagger) queueFlag(ctx context.Context, flag *store.AnomalyFlag) error {
	needsReview, reason := review.ShouldReviewAnomaly(flag.Severity, flag.AnomalyType)
	if !needsReview {
		return nil
	}

	flagID := flag.ID
	item, err := f.queue.CreateItem(ctx, review.CreateParams{
		ItemType:    store.ReviewItemAnomaly,
		EntityID:    &flagID,
		EntityType:  "anomaly_flag",
		Title:       flag.Title,
		Description: &reason,
		Severity:    flag.Severity,
	})
	if err != nil {
		return fmt.Errorf("failed to create review item: %w", err)
	}

	if err := f.storage.Anomalies.LinkReviewItem(ctx, flag.ID, item.ID); err != nil {
		return fmt.Errorf("failed to link review item: %w", err)
	}
	flag.ReviewItemID = &item.ID
	return nil
}

func effectiveProjectCode(item store.AllocationLineItem) string {
	if item.OverrideProjectCode != nil && *item.OverrideProjectCode != "" {
		return *item.OverrideProjectCode
	}
	if item.ProjectCode != nil {
		return *item.ProjectCode
	}
	return ""
}
