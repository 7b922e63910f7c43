package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReconciliationStore struct {
	db *sqlx.DB
}

func (rs *ReconciliationStore) InsertRun(ctx context.Context, run *ReconciliationRun) error {
	query := `INSERT INTO reconciliation_runs (
		id,
		name,
		description,
		status,
		run_by
	) VALUES (
		:id,
		:name,
		:description,
		:status,
		:run_by
	) RETURNING created_at, updated_at`

	rows, err := rs.db.NamedQuery(query, run)
	if err != nil {
		return fmt.Errorf("failed to insert reconciliation run: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&run.CreatedAt, &run.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (rs *ReconciliationStore) InsertRecords(ctx context.Context, records []ReconciliationRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO reconciliation_records (
		id,
		run_id,
		source,
		record_type,
		reference_number,
		record_data,
		match_status,
		matched_with_id,
		match_confidence,
		match_reasoning,
		mismatch_details
	) VALUES (
		:id,
		:run_id,
		:source,
		:record_type,
		:reference_number,
		:record_data,
		:match_status,
		:matched_with_id,
		:match_confidence,
		:match_reasoning,
		:mismatch_details
	)`

	if _, err := rs.db.NamedExecContext(ctx, query, records); err != nil {
		return fmt.Errorf("failed to insert reconciliation records: %w", err)
	}
	return nil
}

func (rs *ReconciliationStore) UpdateRunResults(ctx context.Context, run *ReconciliationRun) error {
	query := `UPDATE reconciliation_runs SET
		status = :status,
		total_records = :total_records,
		matched_count = :matched_count,
		mismatch_count = :mismatch_count,
		match_rate = :match_rate,
		processing_time_ms = :processing_time_ms,
		summary = :summary,
		updated_at = now()
	WHERE id = :id AND status != 'resolved'`

	result, err := rs.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation run: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (rs *ReconciliationStore) GetRun(ctx context.Context, id uuid.UUID) (*ReconciliationRun, error) {
	query := `
	SELECT id, name, description, status, total_records, matched_count,
		mismatch_count, match_rate, run_by, processing_time_ms, summary,
		created_at, updated_at
	FROM reconciliation_runs
	WHERE id = $1`

	var run ReconciliationRun
	row := rs.db.QueryRowxContext(ctx, query, id)
	if err := row.StructScan(&run); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reconciliation run: %w", err)
	}

	recordsQuery := `
	SELECT id, run_id, source, record_type, reference_number, record_data,
		match_status, matched_with_id, match_confidence, match_reasoning,
		mismatch_details, created_at
	FROM reconciliation_records
	WHERE run_id = $1
	ORDER BY created_at`

	rows, err := rs.db.QueryxContext(ctx, recordsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec ReconciliationRecord
		if err := rows.StructScan(&rec); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation record: %w", err)
		}
		run.Records = append(run.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return &run, nil
}

func (rs *ReconciliationStore) ListRuns(ctx context.Context, limit int) ([]ReconciliationRun, error) {
	query := `
	SELECT id, name, description, status, total_records, matched_count,
		mismatch_count, match_rate, run_by, processing_time_ms, summary,
		created_at, updated_at
	FROM reconciliation_runs
	ORDER BY created_at DESC
	LIMIT $1`

	rows, err := rs.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation runs: %w", err)
	}
	defer rows.Close()

	var runs []ReconciliationRun
	for rows.Next() {
		var run ReconciliationRun
		if err := rows.StructScan(&run); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return runs, nil
}
