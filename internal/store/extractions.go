package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ExtractionStore struct {
	db *sqlx.DB
}

func (es *ExtractionStore) GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*Extraction, error) {
	query := `
	SELECT id, document_id, extraction_data, created_at
	FROM extractions
	WHERE document_id = $1
	ORDER BY created_at DESC
	LIMIT 1`

	var ext Extraction
	row := es.db.QueryRowxContext(ctx, query, documentID)
	if err := row.StructScan(&ext); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}
	return &ext, nil
}

func (es *ExtractionStore) ListRecent(ctx context.Context, excludeDocumentID *uuid.UUID, since time.Time, limit int) ([]Extraction, error) {
	query := `
	SELECT id, document_id, extraction_data, created_at
	FROM extractions
	WHERE created_at >= $1 AND ($2::uuid IS NULL OR document_id != $2)
	ORDER BY created_at DESC
	LIMIT $3`

	rows, err := es.db.QueryxContext(ctx, query, since, excludeDocumentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer rows.Close()

	var extractions []Extraction
	for rows.Next() {
		var ext Extraction
		if err := rows.StructScan(&ext); err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		extractions = append(extractions, ext)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return extractions, nil
}

// HistoricalAmounts returns the most recent extracted total amounts for a
// vendor, newest first. Used as the comparison population for outlier checks.
func (es *ExtractionStore) HistoricalAmounts(ctx context.Context, vendor string, limit int) ([]float64, error) {
	query := `
	SELECT (extraction_data->>'total_amount')::float8
	FROM extractions
	WHERE LOWER(COALESCE(extraction_data->>'vendor', extraction_data->>'shipper', '')) = LOWER($1)
		AND extraction_data->>'total_amount' IS NOT NULL
	ORDER BY created_at DESC
	LIMIT $2`

	rows, err := es.db.QueryxContext(ctx, query, vendor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical amounts: %w", err)
	}
	defer rows.Close()

	var amounts []float64
	for rows.Next() {
		var amount float64
		if err := rows.Scan(&amount); err != nil {
			return nil, fmt.Errorf("failed to scan amount: %w", err)
		}
		amounts = append(amounts, amount)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return amounts, nil
}
