package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/freightaudit/internal/logger"
	"github.com/harborline/freightaudit/internal/review"
	"github.com/harborline/freightaudit/internal/store"
)

// Config holds the reconciliation thresholds, injected by the caller.
type Config struct {
	AmountTolerancePct float64
	DateToleranceDays  int
	RecordWindow       int
}

func DefaultConfig() Config {
	return Config{
		AmountTolerancePct: 0.02,
		DateToleranceDays:  3,
		RecordWindow:       500,
	}
}

// Engine runs cross-system reconciliation passes. A run is written only by
// the engine invocation that created it; concurrent runs over overlapping
// record populations are not coordinated here.
type Engine struct {
	storage *store.Storage
	queue   *review.Queue
	cfg     Config
	log     *logger.Logger
}

func NewEngine(storage *store.Storage, queue *review.Queue, cfg Config, log *logger.Logger) *Engine {
	return &Engine{storage: storage, queue: queue, cfg: cfg, log: log}
}

// recordPayload is the slice of a system-of-record row the matchers consume.
type recordPayload struct {
	Amount      *float64 `json:"amount"`
	ShipDate    string   `json:"ship_date"`
	PostingDate string   `json:"posting_date"`
}

// Run executes a full reconciliation pass: TMS shipments against ERP GL
// entries, matched by normalized reference number, then amount and date.
func (e *Engine) Run(ctx context.Context, name, description, runBy string) (*store.ReconciliationRun, error) {
	const component = "Reconciliation"
	start := time.Now()

	if name == "" {
		name = fmt.Sprintf("Reconciliation %s", time.Now().UTC().Format("2006-01-02 15:04"))
	}
	run := &store.ReconciliationRun{
		ID:     uuid.New(),
		Name:   name,
		Status: store.ReconciliationPending,
		RunBy:  runBy,
	}
	if description != "" {
		run.Description = &description
	}
	if err := e.storage.Reconciliation.InsertRun(ctx, run); err != nil {
		return nil, err
	}

	tmsRows, err := e.storage.Records.ListBySource(ctx, store.SourceTMS, "shipment", e.cfg.RecordWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load TMS records: %w", err)
	}
	erpRows, err := e.storage.Records.ListBySource(ctx, store.SourceERP, "gl_entry", e.cfg.RecordWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load ERP records: %w", err)
	}
	e.log.Info(component, "Run %s loaded %d TMS and %d ERP records", run.ID, len(tmsRows), len(erpRows))

	tmsRecords := makeRunRecords(run.ID, tmsRows)
	erpRecords := makeRunRecords(run.ID, erpRows)

	erpByRef := make(map[string][]*store.ReconciliationRecord)
	for i := range erpRecords {
		ref := normalizeRef(erpRecords[i].ReferenceNumber)
		erpByRef[ref] = append(erpByRef[ref], &erpRecords[i])
	}

	matchedCount := 0
	mismatchCount := 0

	for i := range tmsRecords {
		tmsRec := &tmsRecords[i]
		candidates := erpByRef[normalizeRef(tmsRec.ReferenceNumber)]

		var erpRec *store.ReconciliationRecord
		for _, c := range candidates {
			if c.MatchStatus == store.ReconciliationPending {
				erpRec = c
				break
			}
		}
		if erpRec == nil {
			tmsRec.MatchStatus = store.ReconciliationMismatch
			tmsRec.MatchReasoning = strPtr("No matching ERP record found")
			mismatchCount++
			continue
		}

		if e.classifyPair(tmsRec, erpRec) {
			matchedCount++
		} else {
			mismatchCount++
		}
	}

	for i := range erpRecords {
		if erpRecords[i].MatchStatus == store.ReconciliationPending {
			erpRecords[i].MatchStatus = store.ReconciliationMismatch
			erpRecords[i].MatchReasoning = strPtr("No matching TMS record found")
			mismatchCount++
		}
	}

	allRecords := append(tmsRecords, erpRecords...)
	if err := e.storage.Reconciliation.InsertRecords(ctx, allRecords); err != nil {
		return nil, err
	}

	totalRecords := len(tmsRecords) + len(erpRecords)
	matchRate := round4(float64(matchedCount) / math.Max(float64(len(tmsRecords)), 1))

	switch {
	case mismatchCount == 0:
		run.Status = store.ReconciliationMatched
	case matchedCount > 0:
		run.Status = store.ReconciliationPartialMatch
	default:
		run.Status = store.ReconciliationMismatch
	}
	run.TotalRecords = totalRecords
	run.MatchedCount = matchedCount
	run.MismatchCount = mismatchCount
	run.MatchRate = matchRate
	run.ProcessingTimeMs = time.Since(start).Milliseconds()

	summary, err := json.Marshal(map[string]interface{}{
		"tms_records": len(tmsRecords),
		"erp_records": len(erpRecords),
		"matched":     matchedCount,
		"mismatched":  mismatchCount,
		"match_rate":  matchRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run summary: %w", err)
	}
	run.Summary = summary

	if err := e.storage.Reconciliation.UpdateRunResults(ctx, run); err != nil {
		return nil, err
	}
	e.log.Info(component, "Run %s finished: status=%s matched=%d mismatched=%d rate=%.4f",
		run.ID, run.Status, matchedCount, mismatchCount, matchRate)

	if needsReview, reason := review.ShouldReviewReconciliation(mismatchCount, totalRecords); needsReview {
		severity := store.SeverityMedium
		if mismatchCount > 10 {
			severity = store.SeverityHigh
		}
		runID := run.ID
		_, err := e.queue.CreateItem(ctx, review.CreateParams{
			ItemType:    store.ReviewItemReconciliationMismatch,
			EntityID:    &runID,
			EntityType:  "reconciliation_run",
			Title:       fmt.Sprintf("Reconciliation: %d mismatches (%.0f%% match rate)", mismatchCount, matchRate*100),
			Description: &reason,
			Severity:    severity,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create review item: %w", err)
		}
	}

	run.Records = allRecords
	return run, nil
}

// classifyPair writes the match outcome symmetrically onto both records and
// reports whether the pair matched.
func (e *Engine) classifyPair(tmsRec, erpRec *store.ReconciliationRecord) bool {
	var tmsData, erpData recordPayload
	// Malformed payloads degrade to absent fields, which the matchers treat
	// as no-match rather than an error.
	_ = json.Unmarshal(tmsRec.RecordData, &tmsData)
	_ = json.Unmarshal(erpRec.RecordData, &erpData)

	amountMatched, amountConf := MatchByAmount(tmsData.Amount, erpData.Amount, e.cfg.AmountTolerancePct)
	_, dateConf := MatchByDate(tmsData.ShipDate, erpData.PostingDate, e.cfg.DateToleranceDays)

	composite := ComputeCompositeConfidence(1.0, amountConf, dateConf)

	tmsRec.MatchedWithID = &erpRec.ID
	erpRec.MatchedWithID = &tmsRec.ID
	tmsRec.MatchConfidence = &composite
	erpRec.MatchConfidence = &composite

	if amountMatched {
		reasoning := fmt.Sprintf("Reference match + amount match (TMS: $%s, ERP: $%s)",
			formatAmount(tmsData.Amount), formatAmount(erpData.Amount))
		tmsRec.MatchStatus = store.ReconciliationMatched
		erpRec.MatchStatus = store.ReconciliationMatched
		tmsRec.MatchReasoning = &reasoning
		erpRec.MatchReasoning = &reasoning
		return true
	}

	reasoning := "Reference matched but amounts differ"
	details, _ := json.Marshal(map[string]interface{}{
		"tms_amount": tmsData.Amount,
		"erp_amount": erpData.Amount,
		"difference": round2(math.Abs(amountOrZero(tmsData.Amount) - amountOrZero(erpData.Amount))),
	})
	tmsRec.MatchStatus = store.ReconciliationMismatch
	erpRec.MatchStatus = store.ReconciliationMismatch
	tmsRec.MatchReasoning = &reasoning
	erpRec.MatchReasoning = &reasoning
	tmsRec.MismatchDetails = details
	erpRec.MismatchDetails = details
	return false
}

func makeRunRecords(runID uuid.UUID, rows []store.LogisticsRecord) []store.ReconciliationRecord {
	records := make([]store.ReconciliationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, store.ReconciliationRecord{
			ID:              uuid.New(),
			RunID:           runID,
			Source:          row.DataSource,
			RecordType:      row.RecordType,
			ReferenceNumber: row.ReferenceNumber,
			RecordData:      row.Data,
			MatchStatus:     store.ReconciliationPending,
		})
	}
	return records
}

func normalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}

func strPtr(s string) *string { return &s }

func amountOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func formatAmount(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%.2f", *v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
