package review

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harborline/freightaudit/internal/logger"
	"github.com/harborline/freightaudit/internal/store"
)

type fakeReviewStore struct {
	items   map[uuid.UUID]*store.ReviewItem
	updates int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{items: make(map[uuid.UUID]*store.ReviewItem)}
}

func (f *fakeReviewStore) InsertItem(ctx context.Context, item *store.ReviewItem) error {
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeReviewStore) GetItem(ctx context.Context, id uuid.UUID) (*store.ReviewItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeReviewStore) UpdateDecision(ctx context.Context, item *store.ReviewItem, previousStatus store.ReviewStatus) error {
	current, ok := f.items[item.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Status != previousStatus {
		if current.Status.Terminal() {
			return store.ErrAlreadyReviewed
		}
		return store.ErrNotFound
	}
	copied := *item
	f.items[item.ID] = &copied
	f.updates++
	return nil
}

func (f *fakeReviewStore) ListItems(ctx context.Context, filter store.ReviewFilter) ([]store.ReviewItem, int, error) {
	var items []store.ReviewItem
	for _, item := range f.items {
		items = append(items, *item)
	}
	return items, len(items), nil
}

func (f *fakeReviewStore) Stats(ctx context.Context) (*store.ReviewQueueStats, error) {
	return &store.ReviewQueueStats{Total: len(f.items)}, nil
}

func newTestQueue(reviews *fakeReviewStore) *Queue {
	storage := &store.Storage{Reviews: reviews}
	return NewQueue(storage, DefaultPolicy(), &logger.Logger{MinLevel: logger.LevelError})
}

func TestCreateItemAutoApprovesSmallConfidentItems(t *testing.T) {
	queue := newTestQueue(newFakeReviewStore())

	item, err := queue.CreateItem(context.Background(), CreateParams{
		ItemType:   store.ReviewItemCostAllocation,
		EntityType: "cost_allocation",
		Title:      "Allocation for INV-1001",
		Amount:     fp(500),
		Confidence: fp(0.95),
	})
	if err != nil {
		t.Fatalf("CreateItem error: %v", err)
	}
	if item.Status != store.ReviewAutoApproved {
		t.Fatalf("status = %s, want %s", item.Status, store.ReviewAutoApproved)
	}
	if !item.AutoApproveEligible {
		t.Fatal("expected auto-approve eligibility")
	}
}

func TestCreateItemHighValueForcesReview(t *testing.T) {
	queue := newTestQueue(newFakeReviewStore())

	item, err := queue.CreateItem(context.Background(), CreateParams{
		ItemType:   store.ReviewItemCostAllocation,
		EntityType: "cost_allocation",
		Title:      "Allocation for INV-1002",
		Amount:     fp(15000),
		Confidence: fp(0.99),
	})
	if err != nil {
		t.Fatalf("CreateItem error: %v", err)
	}
	if item.Status != store.ReviewPending {
		t.Fatalf("status = %s, want %s despite high confidence", item.Status, store.ReviewPending)
	}
	if item.AutoApproveEligible {
		t.Fatal("high-value items must not be auto-approve eligible")
	}
	if item.Severity != store.SeverityHigh {
		t.Fatalf("severity = %s, want %s", item.Severity, store.SeverityHigh)
	}
}

func TestProcessActionAppliesDecision(t *testing.T) {
	reviews := newFakeReviewStore()
	queue := newTestQueue(reviews)

	item, err := queue.CreateItem(context.Background(), CreateParams{
		ItemType:   store.ReviewItemAnomaly,
		EntityType: "anomaly_flag",
		Title:      "Possible duplicate invoice",
		Severity:   store.SeverityHigh,
	})
	if err != nil {
		t.Fatalf("CreateItem error: %v", err)
	}

	notes := "confirmed duplicate with AP team"
	updated, err := queue.ProcessAction(context.Background(), item.ID, ActionReject, "reviewer@example.com", &notes)
	if err != nil {
		t.Fatalf("ProcessAction error: %v", err)
	}
	if updated.Status != store.ReviewRejected {
		t.Fatalf("status = %s, want %s", updated.Status, store.ReviewRejected)
	}
	if updated.ReviewedBy == nil || *updated.ReviewedBy != "reviewer@example.com" {
		t.Fatal("reviewed_by not recorded")
	}
	if updated.ReviewedAt == nil {
		t.Fatal("reviewed_at not recorded")
	}
	if reviews.updates != 1 {
		t.Fatalf("store updates = %d, want 1", reviews.updates)
	}
}

func TestProcessActionRejectsInvalidAction(t *testing.T) {
	queue := newTestQueue(newFakeReviewStore())

	_, err := queue.ProcessAction(context.Background(), uuid.New(), Action("defer"), "reviewer", nil)
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("error = %v, want ErrInvalidAction", err)
	}
}

func TestProcessActionRejectsTerminalItems(t *testing.T) {
	reviews := newFakeReviewStore()
	queue := newTestQueue(reviews)

	item, err := queue.CreateItem(context.Background(), CreateParams{
		ItemType:   store.ReviewItemAnomaly,
		EntityType: "anomaly_flag",
		Title:      "Budget overrun on PRJ-100",
		Severity:   store.SeverityMedium,
	})
	if err != nil {
		t.Fatalf("CreateItem error: %v", err)
	}

	if _, err := queue.ProcessAction(context.Background(), item.ID, ActionApprove, "first", nil); err != nil {
		t.Fatalf("first decision error: %v", err)
	}

	_, err = queue.ProcessAction(context.Background(), item.ID, ActionEscalate, "second", nil)
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("error = %v, want ErrAlreadyReviewed", err)
	}
	if reviews.updates != 1 {
		t.Fatalf("store updates = %d, want 1 (terminal items stay unchanged)", reviews.updates)
	}
}

// contendedReviewStore approves the item between the caller's read and its
// guarded write, the way a concurrent reviewer would.
type contendedReviewStore struct {
	fakeReviewStore
}

func (f *contendedReviewStore) UpdateDecision(ctx context.Context, item *store.ReviewItem, previousStatus store.ReviewStatus) error {
	if current, ok := f.items[item.ID]; ok {
		current.Status = store.ReviewApproved
	}
	return f.fakeReviewStore.UpdateDecision(ctx, item, previousStatus)
}

func TestProcessActionLosesRaceToConcurrentDecision(t *testing.T) {
	reviews := &contendedReviewStore{fakeReviewStore: fakeReviewStore{items: make(map[uuid.UUID]*store.ReviewItem)}}
	storage := &store.Storage{Reviews: reviews}
	queue := NewQueue(storage, DefaultPolicy(), &logger.Logger{MinLevel: logger.LevelError})

	item, err := queue.CreateItem(context.Background(), CreateParams{
		ItemType:   store.ReviewItemAnomaly,
		EntityType: "anomaly_flag",
		Title:      "Unusual invoice amount",
		Severity:   store.SeverityMedium,
	})
	if err != nil {
		t.Fatalf("CreateItem error: %v", err)
	}

	_, err = queue.ProcessAction(context.Background(), item.ID, ActionReject, "slow-reviewer", nil)
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("error = %v, want ErrAlreadyReviewed", err)
	}

	final, err := reviews.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetItem error: %v", err)
	}
	if final.Status != store.ReviewApproved {
		t.Fatalf("status = %s, want the concurrent approval preserved", final.Status)
	}
}

func TestProcessActionMissingItem(t *testing.T) {
	queue := newTestQueue(newFakeReviewStore())

	_, err := queue.ProcessAction(context.Background(), uuid.New(), ActionApprove, "reviewer", nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want store.ErrNotFound", err)
	}
}
