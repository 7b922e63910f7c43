package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Closed enumerations. Values are stored as strings but validated on the way
// in: Parse* fails fast on unknown values instead of passing strings through.

type ReconciliationStatus string

const (
	ReconciliationPending      ReconciliationStatus = "pending"
	ReconciliationMatched      ReconciliationStatus = "matched"
	ReconciliationPartialMatch ReconciliationStatus = "partial_match"
	ReconciliationMismatch     ReconciliationStatus = "mismatch"
	ReconciliationResolved     ReconciliationStatus = "resolved"
)

func ParseReconciliationStatus(s string) (ReconciliationStatus, error) {
	switch ReconciliationStatus(s) {
	case ReconciliationPending, ReconciliationMatched, ReconciliationPartialMatch,
		ReconciliationMismatch, ReconciliationResolved:
		return ReconciliationStatus(s), nil
	}
	return "", fmt.Errorf("unknown reconciliation status %q", s)
}

type RecordSource string

const (
	SourceTMS RecordSource = "tms"
	SourceWMS RecordSource = "wms"
	SourceERP RecordSource = "erp"
)

func ParseRecordSource(s string) (RecordSource, error) {
	switch RecordSource(s) {
	case SourceTMS, SourceWMS, SourceERP:
		return RecordSource(s), nil
	}
	return "", fmt.Errorf("unknown record source %q", s)
}

type AnomalyType string

const (
	AnomalyDuplicateInvoice       AnomalyType = "duplicate_invoice"
	AnomalyBudgetOverrun          AnomalyType = "budget_overrun"
	AnomalyMisallocatedCost       AnomalyType = "misallocated_cost"
	AnomalyUnusualAmount          AnomalyType = "unusual_amount"
	AnomalyMissingApproval        AnomalyType = "missing_approval"
	AnomalyReconciliationMismatch AnomalyType = "reconciliation_mismatch"
)

func ParseAnomalyType(s string) (AnomalyType, error) {
	switch AnomalyType(s) {
	case AnomalyDuplicateInvoice, AnomalyBudgetOverrun, AnomalyMisallocatedCost,
		AnomalyUnusualAmount, AnomalyMissingApproval, AnomalyReconciliationMismatch:
		return AnomalyType(s), nil
	}
	return "", fmt.Errorf("unknown anomaly type %q", s)
}

type AnomalySeverity string

const (
	SeverityLow      AnomalySeverity = "low"
	SeverityMedium   AnomalySeverity = "medium"
	SeverityHigh     AnomalySeverity = "high"
	SeverityCritical AnomalySeverity = "critical"
)

func ParseAnomalySeverity(s string) (AnomalySeverity, error) {
	switch AnomalySeverity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return AnomalySeverity(s), nil
	}
	return "", fmt.Errorf("unknown anomaly severity %q", s)
}

type ReviewStatus string

const (
	ReviewPending      ReviewStatus = "pending_review"
	ReviewApproved     ReviewStatus = "approved"
	ReviewRejected     ReviewStatus = "rejected"
	ReviewEscalated    ReviewStatus = "escalated"
	ReviewAutoApproved ReviewStatus = "auto_approved"
)

func ParseReviewStatus(s string) (ReviewStatus, error) {
	switch ReviewStatus(s) {
	case ReviewPending, ReviewApproved, ReviewRejected, ReviewEscalated, ReviewAutoApproved:
		return ReviewStatus(s), nil
	}
	return "", fmt.Errorf("unknown review status %q", s)
}

// Terminal reports whether the status is a terminal disposition. Terminal
// items accept no further review actions.
func (s ReviewStatus) Terminal() bool {
	switch s {
	case ReviewApproved, ReviewRejected, ReviewEscalated, ReviewAutoApproved:
		return true
	}
	return false
}

type ReviewItemType string

const (
	ReviewItemCostAllocation         ReviewItemType = "cost_allocation"
	ReviewItemAnomaly                ReviewItemType = "anomaly"
	ReviewItemReconciliationMismatch ReviewItemType = "reconciliation_mismatch"
)

func ParseReviewItemType(s string) (ReviewItemType, error) {
	switch ReviewItemType(s) {
	case ReviewItemCostAllocation, ReviewItemAnomaly, ReviewItemReconciliationMismatch:
		return ReviewItemType(s), nil
	}
	return "", fmt.Errorf("unknown review item type %q", s)
}

type AllocationStatus string

const (
	AllocationPending      AllocationStatus = "pending"
	AllocationAllocated    AllocationStatus = "allocated"
	AllocationReviewNeeded AllocationStatus = "review_needed"
	AllocationApproved     AllocationStatus = "approved"
	AllocationRejected     AllocationStatus = "rejected"
)

// LogisticsRecord represents the 'logistics_records' table: raw rows exported
// from the three systems of record (TMS, WMS, ERP).
type LogisticsRecord struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	DataSource      RecordSource   `db:"data_source" json:"data_source"`
	RecordType      string         `db:"record_type" json:"record_type"`
	ReferenceNumber string         `db:"reference_number" json:"reference_number"`
	Data            types.JSONText `db:"data" json:"data"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// ProjectBudget represents the 'project_budgets' table.
type ProjectBudget struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProjectCode  string    `db:"project_code" json:"project_code"`
	ProjectName  string    `db:"project_name" json:"project_name"`
	BudgetAmount float64   `db:"budget_amount" json:"budget_amount"`
	SpentAmount  float64   `db:"spent_amount" json:"spent_amount"`
	Currency     string    `db:"currency" json:"currency"`
	FiscalYear   *int      `db:"fiscal_year" json:"fiscal_year,omitempty"`
	CostCenter   *string   `db:"cost_center" json:"cost_center,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Extraction represents the 'extractions' table: the latest structured record
// the upstream extraction pipeline produced for a document.
type Extraction struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	DocumentID uuid.UUID      `db:"document_id" json:"document_id"`
	Data       types.JSONText `db:"extraction_data" json:"extraction_data"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// CostAllocation represents the 'cost_allocations' table.
type CostAllocation struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	DocumentID  *uuid.UUID       `db:"document_id" json:"document_id,omitempty"`
	Status      AllocationStatus `db:"status" json:"status"`
	TotalAmount *float64         `db:"total_amount" json:"total_amount,omitempty"`
	Currency    string           `db:"currency" json:"currency"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`

	LineItems []AllocationLineItem `db:"-" json:"line_items,omitempty"`
}

// AllocationLineItem represents the 'allocation_line_items' table.
type AllocationLineItem struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	AllocationID        uuid.UUID `db:"allocation_id" json:"allocation_id"`
	LineItemIndex       int       `db:"line_item_index" json:"line_item_index"`
	Description         string    `db:"description" json:"description"`
	Amount              float64   `db:"amount" json:"amount"`
	ProjectCode         *string   `db:"project_code" json:"project_code,omitempty"`
	OverrideProjectCode *string   `db:"override_project_code" json:"override_project_code,omitempty"`
	Confidence          *float64  `db:"confidence" json:"confidence,omitempty"`
}

// ReconciliationRun represents the 'reconciliation_runs' table. A run is
// created pending, written only by the orchestration that created it, and is
// immutable once resolved.
type ReconciliationRun struct {
	ID               uuid.UUID            `db:"id" json:"id"`
	Name             string               `db:"name" json:"name"`
	Description      *string              `db:"description" json:"description,omitempty"`
	Status           ReconciliationStatus `db:"status" json:"status"`
	TotalRecords     int                  `db:"total_records" json:"total_records"`
	MatchedCount     int                  `db:"matched_count" json:"matched_count"`
	MismatchCount    int                  `db:"mismatch_count" json:"mismatch_count"`
	MatchRate        float64              `db:"match_rate" json:"match_rate"`
	RunBy            string               `db:"run_by" json:"run_by"`
	ProcessingTimeMs int64                `db:"processing_time_ms" json:"processing_time_ms"`
	Summary          types.JSONText       `db:"summary" json:"summary,omitempty"`
	CreatedAt        time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `db:"updated_at" json:"updated_at"`

	Records []ReconciliationRecord `db:"-" json:"records,omitempty"`
}

// ReconciliationRecord represents the 'reconciliation_records' table. Every
// record belongs to exactly one run and is cascade-deleted with it.
// MatchedWithID is a back-reference to the paired record, not ownership.
type ReconciliationRecord struct {
	ID              uuid.UUID            `db:"id" json:"id"`
	RunID           uuid.UUID            `db:"run_id" json:"run_id"`
	Source          RecordSource         `db:"source" json:"source"`
	RecordType      string               `db:"record_type" json:"record_type"`
	ReferenceNumber string               `db:"reference_number" json:"reference_number"`
	RecordData      types.JSONText       `db:"record_data" json:"record_data,omitempty"`
	MatchStatus     ReconciliationStatus `db:"match_status" json:"match_status"`
	MatchedWithID   *uuid.UUID           `db:"matched_with_id" json:"matched_with_id,omitempty"`
	MatchConfidence *float64             `db:"match_confidence" json:"match_confidence,omitempty"`
	MatchReasoning  *string              `db:"match_reasoning" json:"match_reasoning,omitempty"`
	MismatchDetails types.JSONText       `db:"mismatch_details" json:"mismatch_details,omitempty"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
}

// AnomalyFlag represents the 'anomaly_flags' table. Flags are audit
// significant: they are resolved by a human action, never deleted.
type AnomalyFlag struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	DocumentID      *uuid.UUID      `db:"document_id" json:"document_id,omitempty"`
	AllocationID    *uuid.UUID      `db:"allocation_id" json:"allocation_id,omitempty"`
	AnomalyType     AnomalyType     `db:"anomaly_type" json:"anomaly_type"`
	Severity        AnomalySeverity `db:"severity" json:"severity"`
	Title           string          `db:"title" json:"title"`
	Description     *string         `db:"description" json:"description,omitempty"`
	Details         types.JSONText  `db:"details" json:"details,omitempty"`
	IsResolved      bool            `db:"is_resolved" json:"is_resolved"`
	ResolvedBy      *string         `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolutionNotes *string         `db:"resolution_notes" json:"resolution_notes,omitempty"`
	ReviewItemID    *uuid.UUID      `db:"review_item_id" json:"review_item_id,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// ReviewItem represents the 'review_queue' table. EntityID/EntityType is a
// weak reference to the subject of the review (lookup-only, not ownership).
type ReviewItem struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	Status              ReviewStatus    `db:"status" json:"status"`
	ItemType            ReviewItemType  `db:"item_type" json:"item_type"`
	EntityID            *uuid.UUID      `db:"entity_id" json:"entity_id,omitempty"`
	EntityType          string          `db:"entity_type" json:"entity_type"`
	Title               string          `db:"title" json:"title"`
	Description         *string         `db:"description" json:"description,omitempty"`
	Severity            AnomalySeverity `db:"severity" json:"severity,omitempty"`
	AssignedTo          *string         `db:"assigned_to" json:"assigned_to,omitempty"`
	ReviewedBy          *string         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time      `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNotes         *string         `db:"review_notes" json:"review_notes,omitempty"`
	AutoApproveEligible bool            `db:"auto_approve_eligible" json:"auto_approve_eligible"`
	DollarAmount        *float64        `db:"dollar_amount" json:"dollar_amount,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// ReviewQueueStats aggregates queue counts per status.
type ReviewQueueStats struct {
	Total        int `db:"total" json:"total"`
	Pending      int `db:"pending_review" json:"pending_review"`
	Approved     int `db:"approved" json:"approved"`
	Rejected     int `db:"rejected" json:"rejected"`
	Escalated    int `db:"escalated" json:"escalated"`
	AutoApproved int `db:"auto_approved" json:"auto_approved"`
}
