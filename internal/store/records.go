package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type RecordStore struct {
	db *sqlx.DB
}

func (rs *RecordStore) InsertRecord(ctx context.Context, record *LogisticsRecord) error {
	query := `INSERT INTO logistics_records (
		id,
		data_source,
		record_type,
		reference_number,
		data
	) VALUES (
		:id,
		:data_source,
		:record_type,
		:reference_number,
		:data
	) RETURNING created_at`

	rows, err := rs.db.NamedQuery(query, record)
	if err != nil {
		return fmt.Errorf("failed to insert logistics record: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&record.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (rs *RecordStore) ListBySource(ctx context.Context, source RecordSource, recordType string, limit int) ([]LogisticsRecord, error) {
	query := `
	SELECT id, data_source, record_type, reference_number, data, created_at
	FROM logistics_records
	WHERE data_source = $1 AND record_type = $2
	ORDER BY created_at DESC
	LIMIT $3`

	rows, err := rs.db.QueryxContext(ctx, query, source, recordType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query logistics records: %w", err)
	}
	defer rows.Close()

	var records []LogisticsRecord
	for rows.Next() {
		var rec LogisticsRecord
		if err := rows.StructScan(&rec); err != nil {
			return nil, fmt.Errorf("failed to scan logistics record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return records, nil
}
