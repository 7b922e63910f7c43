package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AllocationStore struct {
	db *sqlx.DB
}

func (as *AllocationStore) ListAllocations(ctx context.Context, documentID *uuid.UUID) ([]CostAllocation, error) {
	query := `
	SELECT id, document_id, status, total_amount, currency, created_at, updated_at
	FROM cost_allocations
	WHERE $1::uuid IS NULL OR document_id = $1
	ORDER BY created_at DESC`

	rows, err := as.db.QueryxContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost allocations: %w", err)
	}
	defer rows.Close()

	var allocations []CostAllocation
	for rows.Next() {
		var alloc CostAllocation
		if err := rows.StructScan(&alloc); err != nil {
			return nil, fmt.Errorf("failed to scan cost allocation: %w", err)
		}
		allocations = append(allocations, alloc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	for i := range allocations {
		items, err := as.listLineItems(ctx, allocations[i].ID)
		if err != nil {
			return nil, err
		}
		allocations[i].LineItems = items
	}
	return allocations, nil
}

func (as *AllocationStore) listLineItems(ctx context.Context, allocationID uuid.UUID) ([]AllocationLineItem, error) {
	query := `
	SELECT id, allocation_id, line_item_index, description, amount,
		project_code, override_project_code, confidence
	FROM allocation_line_items
	WHERE allocation_id = $1
	ORDER BY line_item_index`

	rows, err := as.db.QueryxContext(ctx, query, allocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation line items: %w", err)
	}
	defer rows.Close()

	var items []AllocationLineItem
	for rows.Next() {
		var item AllocationLineItem
		if err := rows.StructScan(&item); err != nil {
			return nil, fmt.Errorf("failed to scan allocation line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return items, nil
}
