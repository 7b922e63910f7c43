package main

import (
	"errors"
	"net/http"

	"github.com/harborline/freightaudit/internal/response"
	"github.com/harborline/freightaudit/internal/store"
)

type CreateReconciliationRunResponse = response.APIResponse[*store.ReconciliationRun]
type GetReconciliationRunResponse = response.APIResponse[*store.ReconciliationRun]
type ListReconciliationRunsResponse = response.APIResponse[[]store.ReconciliationRun]

// @Summary		Trigger a reconciliation run
// @Description	Cross-references TMS shipments against ERP general-ledger entries and records per-record match outcomes.
// @Tags			Reconciliation
// @Accept			json
// @Produce		json
// @Param			run	body		object{name:string,description:string,run_by:string}	false	"Run metadata"
// @Success		201	{object}	CreateReconciliationRunResponse	"Reconciliation run completed"
// @Failure		400	{object}	response.ErrorResponse			"Invalid request payload"
// @Failure		500	{object}	response.ErrorResponse			"Run failed"
// @Router			/reconciliation/runs [post]
func (app *application) handleCreateReconciliationRun(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		RunBy       string `json:"run_by"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if input.RunBy == "" {
		input.RunBy = "system"
	}

	ctx := r.Context()
	run, err := app.reconciler.Run(ctx, input.Name, input.Description, input.RunBy)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "reconciliation run failed: "+err.Error())
		return
	}

	response := &CreateReconciliationRunResponse{
		Success: true,
		Data:    run,
		Message: "Reconciliation run completed",
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		List reconciliation runs
// @Description	Get the most recent reconciliation runs, newest first.
// @Tags			Reconciliation
// @Produce		json
// @Param			limit	query		int								false	"Limit the number of results"	default(20)
// @Success		200		{object}	ListReconciliationRunsResponse	"Successfully retrieved runs"
// @Failure		500		{object}	response.ErrorResponse			"Failed to list runs"
// @Router			/reconciliation/runs [get]
func (app *application) handleListReconciliationRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)

	ctx := r.Context()
	runs, err := app.store.Reconciliation.ListRuns(ctx, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list reconciliation runs: "+err.Error())
		return
	}

	response := &ListReconciliationRunsResponse{
		Success: true,
		Data:    runs,
		Message: "Successfully retrieved reconciliation runs",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get a reconciliation run
// @Description	Get one reconciliation run with its per-record match outcomes.
// @Tags			Reconciliation
// @Produce		json
// @Param			id	path		string							true	"Run ID"
// @Success		200	{object}	GetReconciliationRunResponse	"Successfully retrieved run"
// @Failure		400	{object}	response.ErrorResponse			"Invalid run ID"
// @Failure		404	{object}	response.ErrorResponse			"Run not found"
// @Failure		500	{object}	response.ErrorResponse			"Failed to get run"
// @Router			/reconciliation/runs/{id} [get]
func (app *application) handleGetReconciliationRun(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	ctx := r.Context()
	run, err := app.store.Reconciliation.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "reconciliation run not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to get reconciliation run: "+err.Error())
		return
	}

	response := &GetReconciliationRunResponse{
		Success: true,
		Data:    run,
		Message: "Successfully retrieved reconciliation run",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
