package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReviewStore struct {
	db *sqlx.DB
}

func (rs *ReviewStore) InsertItem(ctx context.Context, item *ReviewItem) error {
	query := `INSERT INTO review_queue (
		id,
		status,
		item_type,
		entity_id,
		entity_type,
		title,
		description,
		severity,
		auto_approve_eligible,
		dollar_amount
	) VALUES (
		:id,
		:status,
		:item_type,
		:entity_id,
		:entity_type,
		:title,
		:description,
		:severity,
		:auto_approve_eligible,
		:dollar_amount
	) RETURNING created_at, updated_at`

	rows, err := rs.db.NamedQuery(query, item)
	if err != nil {
		return fmt.Errorf("failed to insert review item: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (rs *ReviewStore) GetItem(ctx context.Context, id uuid.UUID) (*ReviewItem, error) {
	query := `
	SELECT id, status, item_type, entity_id, entity_type, title, description,
		severity, assigned_to, reviewed_by, reviewed_at, review_notes,
		auto_approve_eligible, dollar_amount, created_at, updated_at
	FROM review_queue
	WHERE id = $1`

	var item ReviewItem
	row := rs.db.QueryRowxContext(ctx, query, id)
	if err := row.StructScan(&item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review item: %w", err)
	}
	return &item, nil
}

// UpdateDecision persists a state transition. The status guard makes the
// write a check-and-set: two racing transitions on the same item cannot both
// succeed.
func (rs *ReviewStore) UpdateDecision(ctx context.Context, item *ReviewItem, previousStatus ReviewStatus) error {
	query := `UPDATE review_queue SET
		status = $1,
		reviewed_by = $2,
		reviewed_at = $3,
		review_notes = $4,
		updated_at = now()
	WHERE id = $5 AND status = $6`

	result, err := rs.db.ExecContext(ctx, query,
		item.Status, item.ReviewedBy, item.ReviewedAt, item.ReviewNotes, item.ID, previousStatus)
	if err != nil {
		return fmt.Errorf("failed to update review item: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Zero rows means either the id is gone or the status guard lost a
		// race; re-read to tell the two apart.
		current, err := rs.GetItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("review item %s moved from %s to %s concurrently", item.ID, previousStatus, current.Status)
	}
	return nil
}

func (rs *ReviewStore) ListItems(ctx context.Context, filter ReviewFilter) ([]ReviewItem, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ItemType != "" {
		args = append(args, filter.ItemType)
		conditions = append(conditions, fmt.Sprintf("item_type = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(id) FROM review_queue WHERE %s`, where)
	if err := rs.db.QueryRowxContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count review items: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	args = append(args, perPage, (page-1)*perPage)

	query := fmt.Sprintf(`
	SELECT id, status, item_type, entity_id, entity_type, title, description,
		severity, assigned_to, reviewed_by, reviewed_at, review_notes,
		auto_approve_eligible, dollar_amount, created_at, updated_at
	FROM review_queue
	WHERE %s
	ORDER BY created_at DESC
	LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := rs.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query review items: %w", err)
	}
	defer rows.Close()

	var items []ReviewItem
	for rows.Next() {
		var item ReviewItem
		if err := rows.StructScan(&item); err != nil {
			return nil, 0, fmt.Errorf("failed to scan review item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}
	return items, total, nil
}

func (rs *ReviewStore) Stats(ctx context.Context) (*ReviewQueueStats, error) {
	query := `
	SELECT
		COUNT(id) AS total,
		COUNT(id) FILTER (WHERE status = 'pending_review') AS pending_review,
		COUNT(id) FILTER (WHERE status = 'approved') AS approved,
		COUNT(id) FILTER (WHERE status = 'rejected') AS rejected,
		COUNT(id) FILTER (WHERE status = 'escalated') AS escalated,
		COUNT(id) FILTER (WHERE status = 'auto_approved') AS auto_approved
	FROM review_queue`

	var stats ReviewQueueStats
	row := rs.db.QueryRowxContext(ctx, query)
	if err := row.StructScan(&stats); err != nil {
		return nil, fmt.Errorf("failed to get review queue stats: %w", err)
	}
	return &stats, nil
}
