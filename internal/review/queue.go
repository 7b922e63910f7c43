package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/freightaudit/internal/logger"
	"github.com/harborline/freightaudit/internal/store"
)

var (
	// ErrInvalidAction is returned for an unrecognized review action. The
	// item's state is left unchanged.
	ErrInvalidAction = errors.New("invalid review action: must be approve, reject, or escalate")

	// ErrAlreadyReviewed is returned when acting on an item that already
	// reached a terminal disposition, whether seen on the initial read or
	// reported by the store after losing a concurrent transition. Terminal
	// states are terminal.
	ErrAlreadyReviewed = store.ErrAlreadyReviewed
)

// Action names a human review decision.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionEscalate Action = "escalate"
)

// Queue is the review-queue state machine. Items enter as pending_review or
// auto_approved and reach a terminal state through exactly one transition.
type Queue struct {
	storage *store.Storage
	policy  Policy
	log     *logger.Logger
}

func NewQueue(storage *store.Storage, policy Policy, log *logger.Logger) *Queue {
	return &Queue{storage: storage, policy: policy, log: log}
}

// CreateParams describes a finding to queue for review.
type CreateParams struct {
	ItemType    store.ReviewItemType
	EntityID    *uuid.UUID
	EntityType  string
	Title       string
	Description *string
	Severity    store.AnomalySeverity
	Amount      *float64
	Confidence  *float64
}

// CreateItem creates a review item, applying the autonomy policy to pick the
// initial state.
//
// Auto-approval requires amount below the auto-approve threshold and
// confidence at or above 0.85. An amount at or above the high-risk threshold
// forces pending_review regardless of confidence.
func (q *Queue) CreateItem(ctx context.Context, p CreateParams) (*store.ReviewItem, error) {
	const component = "ReviewQueue"

	autoEligible := false
	status := store.ReviewPending
	severity := p.Severity

	if p.Amount != nil && p.Confidence != nil {
		if *p.Amount < q.policy.AutoApproveDollarThreshold && *p.Confidence >= q.policy.ConfidenceThreshold {
			autoEligible = true
			status = store.ReviewAutoApproved
		}
	}

	if p.Amount != nil && *p.Amount >= q.policy.HighRiskDollarThreshold {
		autoEligible = false
		status = store.ReviewPending
		if severity == "" {
			severity = store.SeverityHigh
		}
	}

	item := &store.ReviewItem{
		ID:                  uuid.New(),
		Status:              status,
		ItemType:            p.ItemType,
		EntityID:            p.EntityID,
		EntityType:          p.EntityType,
		Title:               p.Title,
		Description:         p.Description,
		Severity:            severity,
		AutoApproveEligible: autoEligible,
		DollarAmount:        p.Amount,
	}
	if err := q.storage.Reviews.InsertItem(ctx, item); err != nil {
		return nil, err
	}

	q.log.Info(component, "Created review item %s: type=%s status=%s", item.ID, item.ItemType, item.Status)
	return item, nil
}

// ProcessAction applies a human decision to a pending item. Unrecognized
// actions and already-terminal items are validation failures that change
// nothing; a missing item is store.ErrNotFound.
func (q *Queue) ProcessAction(ctx context.Context, itemID uuid.UUID, action Action, reviewedBy string, notes *string) (*store.ReviewItem, error) {
	const component = "ReviewQueue"

	var next store.ReviewStatus
	switch action {
	case ActionApprove:
		next = store.ReviewApproved
	case ActionReject:
		next = store.ReviewRejected
	case ActionEscalate:
		next = store.ReviewEscalated
	default:
		return nil, ErrInvalidAction
	}

	item, err := q.storage.Reviews.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status.Terminal() {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyReviewed, item.Status)
	}

	previous := item.Status
	now := time.Now().UTC()
	item.Status = next
	item.ReviewedBy = &reviewedBy
	item.ReviewedAt = &now
	item.ReviewNotes = notes

	if err := q.storage.Reviews.UpdateDecision(ctx, item, previous); err != nil {
		return nil, err
	}

	q.log.Info(component, "Review item %s: %s -> %s by %s", item.ID, previous, item.Status, reviewedBy)
	return item, nil
}

// List returns a filtered, paginated view of the queue plus the total count.
func (q *Queue) List(ctx context.Context, filter store.ReviewFilter) ([]store.ReviewItem, int, error) {
	return q.storage.Reviews.ListItems(ctx, filter)
}

// Stats returns queue counts per status.
func (q *Queue) Stats(ctx context.Context) (*store.ReviewQueueStats, error) {
	return q.storage.Reviews.Stats(ctx)
}
