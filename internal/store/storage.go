package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Storage struct {
	Records interface {
		InsertRecord(ctx context.Context, record *LogisticsRecord) error
		ListBySource(ctx context.Context, source RecordSource, recordType string, limit int) ([]LogisticsRecord, error)
	}

	Budgets interface {
		GetByProjectCode(ctx context.Context, projectCode string) (*ProjectBudget, error)
		UpsertBudget(ctx context.Context, budget *ProjectBudget) error
	}

	Extractions interface {
		GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*Extraction, error)
		ListRecent(ctx context.Context, excludeDocumentID *uuid.UUID, since time.Time, limit int) ([]Extraction, error)
		HistoricalAmounts(ctx context.Context, vendor string, limit int) ([]float64, error)
	}

	Allocations interface {
		ListAllocations(ctx context.Context, documentID *uuid.UUID) ([]CostAllocation, error)
	}

	Reconciliation interface {
		InsertRun(ctx context.Context, run *ReconciliationRun) error
		InsertRecords(ctx context.Context, records []ReconciliationRecord) error
		UpdateRunResults(ctx context.Context, run *ReconciliationRun) error
		GetRun(ctx context.Context, id uuid.UUID) (*ReconciliationRun, error)
		ListRuns(ctx context.Context, limit int) ([]ReconciliationRun, error)
	}

	Anomalies interface {
		InsertFlag(ctx context.Context, flag *AnomalyFlag) error
		ListFlags(ctx context.Context, filter AnomalyFilter) ([]AnomalyFlag, error)
		LinkReviewItem(ctx context.Context, flagID, reviewItemID uuid.UUID) error
		ResolveFlag(ctx context.Context, flagID uuid.UUID, resolvedBy string, notes *string) (*AnomalyFlag, error)
	}

	Reviews interface {
		InsertItem(ctx context.Context, item *ReviewItem) error
		GetItem(ctx context.Context, id uuid.UUID) (*ReviewItem, error)
		UpdateDecision(ctx context.Context, item *ReviewItem, previousStatus ReviewStatus) error
		ListItems(ctx context.Context, filter ReviewFilter) ([]ReviewItem, int, error)
		Stats(ctx context.Context) (*ReviewQueueStats, error)
	}
}

// AnomalyFilter narrows anomaly listing. Nil/zero fields are ignored.
type AnomalyFilter struct {
	Resolved *bool
	Severity AnomalySeverity
	Type     AnomalyType
	Limit    int
}

// ReviewFilter narrows and paginates review queue listing.
type ReviewFilter struct {
	Status   ReviewStatus
	ItemType ReviewItemType
	Page     int
	PerPage  int
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Records:        &RecordStore{db: db},
		Budgets:        &BudgetStore{db: db},
		Extractions:    &ExtractionStore{db: db},
		Allocations:    &AllocationStore{db: db},
		Reconciliation: &ReconciliationStore{db: db},
		Anomalies:      &AnomalyStore{db: db},
		Reviews:        &ReviewStore{db: db},
	}
}
