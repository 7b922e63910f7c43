package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type BudgetStore struct {
	db *sqlx.DB
}

func (bs *BudgetStore) GetByProjectCode(ctx context.Context, projectCode string) (*ProjectBudget, error) {
	query := `
	SELECT id, project_code, project_name, budget_amount, spent_amount,
		currency, fiscal_year, cost_center, created_at, updated_at
	FROM project_budgets
	WHERE project_code = $1`

	var budget ProjectBudget
	row := bs.db.QueryRowxContext(ctx, query, projectCode)
	if err := row.StructScan(&budget); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project budget: %w", err)
	}
	return &budget, nil
}

func (bs *BudgetStore) UpsertBudget(ctx context.Context, budget *ProjectBudget) error {
	query := `INSERT INTO project_budgets (
		id,
		project_code,
		project_name,
		budget_amount,
		spent_amount,
		currency,
		fiscal_year,
		cost_center
	) VALUES (
		:id,
		:project_code,
		:project_name,
		:budget_amount,
		:spent_amount,
		:currency,
		:fiscal_year,
		:cost_center
	)
	ON CONFLICT (project_code) DO UPDATE SET
		project_name = EXCLUDED.project_name,
		budget_amount = EXCLUDED.budget_amount,
		spent_amount = EXCLUDED.spent_amount,
		updated_at = now()`

	if _, err := bs.db.NamedExecContext(ctx, query, budget); err != nil {
		return fmt.Errorf("failed to upsert project budget: %w", err)
	}
	return nil
}
