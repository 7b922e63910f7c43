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

type AnomalyStore struct {
	db *sqlx.DB
}

func (as *AnomalyStore) InsertFlag(ctx context.Context, flag *AnomalyFlag) error {
	query := `INSERT INTO anomaly_flags (
		id,
		document_id,
		allocation_id,
		anomaly_type,
		severity,
		title,
		description,
		details,
		review_item_id
	) VALUES (
		:id,
		:document_id,
		:allocation_id,
		:anomaly_type,
		:severity,
		:title,
		:description,
		:details,
		:review_item_id
	) RETURNING created_at, updated_at`

	rows, err := as.db.NamedQuery(query, flag)
	if err != nil {
		return fmt.Errorf("failed to insert anomaly flag: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&flag.CreatedAt, &flag.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (as *AnomalyStore) ListFlags(ctx context.Context, filter AnomalyFilter) ([]AnomalyFlag, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Resolved != nil {
		args = append(args, *filter.Resolved)
		conditions = append(conditions, fmt.Sprintf("is_resolved = $%d", len(args)))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("anomaly_type = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
	SELECT id, document_id, allocation_id, anomaly_type, severity, title,
		description, details, is_resolved, resolved_by, resolved_at,
		resolution_notes, review_item_id, created_at, updated_at
	FROM anomaly_flags
	WHERE %s
	ORDER BY created_at DESC
	LIMIT $%d`, strings.Join(conditions, " AND "), len(args))

	rows, err := as.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomaly flags: %w", err)
	}
	defer rows.Close()

	var flags []AnomalyFlag
	for rows.Next() {
		var flag AnomalyFlag
		if err := rows.StructScan(&flag); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly flag: %w", err)
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return flags, nil
}

func (as *AnomalyStore) LinkReviewItem(ctx context.Context, flagID, reviewItemID uuid.UUID) error {
	query := `UPDATE anomaly_flags SET review_item_id = $1, updated_at = now() WHERE id = $2`

	result, err := as.db.ExecContext(ctx, query, reviewItemID, flagID)
	if err != nil {
		return fmt.Errorf("failed to link review item: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveFlag records a human resolution. Flags are never deleted.
func (as *AnomalyStore) ResolveFlag(ctx context.Context, flagID uuid.UUID, resolvedBy string, notes *string) (*AnomalyFlag, error) {
	query := `UPDATE anomaly_flags SET
		is_resolved = TRUE,
		resolved_by = $1,
		resolved_at = now(),
		resolution_notes = $2,
		updated_at = now()
	WHERE id = $3
	RETURNING id, document_id, allocation_id, anomaly_type, severity, title,
		description, details, is_resolved, resolved_by, resolved_at,
		resolution_notes, review_item_id, created_at, updated_at`

	var flag AnomalyFlag
	row := as.db.QueryRowxContext(ctx, query, resolvedBy, notes, flagID)
	if err := row.StructScan(&flag); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve anomaly flag: %w", err)
	}
	return &flag, nil
}
