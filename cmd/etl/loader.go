package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"github.com/harborline/freightaudit/internal/logger"
	"github.com/harborline/freightaudit/internal/store"
	"golang.org/x/text/encoding/charmap"
)

// Columns carried into the record payload as numbers instead of strings. The
// reconciliation matchers expect numeric amounts.
var numericColumns = map[string]bool{
	"amount":       true,
	"total_amount": true,
	"unit_price":   true,
	"quantity":     true,
	"weight":       true,
	"freight_cost": true,
}

func OpenFileAndDecode(path string) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open file %s: %v", path, err)
	}

	defer file.Close()

	// Legacy TMS/ERP exports arrive Windows-1252 encoded
	decoded := charmap.Windows1252.NewDecoder().Reader(file)
	df := dataframe.ReadCSV(decoded, dataframe.WithLazyQuotes(true))
	// If dataframe is empty return
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("dataframe is empty")
	}

	return df, df.Error()
}

func getStr(col string, rowIdx int, df *dataframe.DataFrame) string {
	for _, name := range df.Names() {
		if name == col {
			return df.Col(col).Elem(rowIdx).String()
		}
	}
	return ""
}

// rowToPayload converts one CSV row to the JSON payload stored alongside the
// record. Known numeric columns are parsed; everything else stays a string.
func rowToPayload(df *dataframe.DataFrame, rowIdx int) (map[string]interface{}, error) {
	payload := make(map[string]interface{}, len(df.Names()))
	for _, col := range df.Names() {
		raw := strings.TrimSpace(df.Col(col).Elem(rowIdx).String())
		key := strings.ToLower(strings.TrimSpace(col))

		if numericColumns[key] {
			if raw == "" {
				payload[key] = nil
				continue
			}
			val, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("column %s: %v", col, err)
			}
			payload[key] = val
			continue
		}
		payload[key] = raw
	}
	return payload, nil
}

func LoadRecords(ctx context.Context, df dataframe.DataFrame, source store.RecordSource, recordType, refCol string, storage *store.Storage, appLogger *logger.Logger) error {
	const component = "RecordLoader"
	appLogger.Info(component, "Starting record load: source=%s type=%s rows=%d", source, recordType, df.Nrow())

	inserted := 0
	skipped := 0
	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		reference := strings.TrimSpace(getStr(refCol, rowIdx, &df))
		if reference == "" {
			appLogger.Warn(component, "Skipping row %d: empty reference column %s", rowIdx, refCol)
			skipped++
			continue
		}

		payload, err := rowToPayload(&df, rowIdx)
		if err != nil {
			appLogger.Warn(component, "Skipping row %d (%s): %v", rowIdx, reference, err)
			skipped++
			continue
		}
		data, err := json.Marshal(payload)
		if err != nil {
			appLogger.Warn(component, "Skipping row %d (%s): %v", rowIdx, reference, err)
			skipped++
			continue
		}

		record := &store.LogisticsRecord{
			ID:              uuid.New(),
			DataSource:      source,
			RecordType:      recordType,
			ReferenceNumber: reference,
			Data:            data,
		}
		if err := storage.Records.InsertRecord(ctx, record); err != nil {
			appLogger.Error(component, "Failed to insert record %s: %v", reference, err)
			continue
		}
		inserted++
	}

	appLogger.Info(component, "Record load completed: inserted=%d skipped=%d", inserted, skipped)
	return nil
}

func LoadBudgets(ctx context.Context, df dataframe.DataFrame, storage *store.Storage, appLogger *logger.Logger) error {
	const component = "BudgetLoader"
	appLogger.Info(component, "Starting budget load: rows=%d", df.Nrow())

	inserted := 0
	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		code := strings.TrimSpace(getStr("project_code", rowIdx, &df))
		if code == "" {
			appLogger.Warn(component, "Skipping row %d: empty project_code", rowIdx)
			continue
		}

		budgetAmount, err := strconv.ParseFloat(getStr("budget_amount", rowIdx, &df), 64)
		if err != nil {
			appLogger.Warn(component, "Skipping budget %s: invalid budget_amount: %v", code, err)
			continue
		}
		spentAmount := 0.0
		if raw := strings.TrimSpace(getStr("spent_amount", rowIdx, &df)); raw != "" {
			spentAmount, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				appLogger.Warn(component, "Skipping budget %s: invalid spent_amount: %v", code, err)
				continue
			}
		}

		currency := strings.TrimSpace(getStr("currency", rowIdx, &df))
		if currency == "" {
			currency = "USD"
		}

		budget := &store.ProjectBudget{
			ID:           uuid.New(),
			ProjectCode:  code,
			ProjectName:  strings.TrimSpace(getStr("project_name", rowIdx, &df)),
			BudgetAmount: budgetAmount,
			SpentAmount:  spentAmount,
			Currency:     currency,
		}
		if raw := strings.TrimSpace(getStr("fiscal_year", rowIdx, &df)); raw != "" {
			if year, err := strconv.Atoi(raw); err == nil {
				budget.FiscalYear = &year
			}
		}
		if raw := strings.TrimSpace(getStr("cost_center", rowIdx, &df)); raw != "" {
			budget.CostCenter = &raw
		}

		if err := storage.Budgets.UpsertBudget(ctx, budget); err != nil {
			appLogger.Error(component, "Failed to upsert budget %s: %v", code, err)
			continue
		}
		inserted++
	}

	appLogger.Info(component, "Budget load completed: upserted=%d", inserted)
	return nil
}
