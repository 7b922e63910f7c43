package main

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/harborline/freightaudit/internal/response"
	"github.com/harborline/freightaudit/internal/store"
)

type ScanAnomaliesResponse = response.APIResponse[[]store.AnomalyFlag]
type ListAnomaliesResponse = response.APIResponse[[]store.AnomalyFlag]
type ResolveAnomalyResponse = response.APIResponse[*store.AnomalyFlag]

// @Summary		Scan allocations for anomalies
// @Description	Runs every anomaly detector over cost allocations, optionally scoped to one document. Findings are persisted and review-worthy ones are queued.
// @Tags			Anomalies
// @Accept			json
// @Produce		json
// @Param			scan	body		object{document_id:string}	false	"Optional document scope"
// @Success		200		{object}	ScanAnomaliesResponse	"Scan completed"
// @Failure		400		{object}	response.ErrorResponse	"Invalid request payload"
// @Failure		500		{object}	response.ErrorResponse	"Scan failed"
// @Router			/anomalies/scan [post]
func (app *application) handleScanAnomalies(w http.ResponseWriter, r *http.Request) {
	var input struct {
		DocumentID *uuid.UUID `json:"document_id"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ctx := r.Context()
	flags, err := app.flagger.Scan(ctx, input.DocumentID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "anomaly scan failed: "+err.Error())
		return
	}

	response := &ScanAnomaliesResponse{
		Success: true,
		Data:    flags,
		Message: "Anomaly scan completed",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		List anomaly flags
// @Description	Get anomaly flags, newest first, optionally filtered by resolution state, severity, and type.
// @Tags			Anomalies
// @Produce		json
// @Param			resolved	query		bool					false	"Filter by resolution state"
// @Param			severity	query		string					false	"Filter by severity"
// @Param			type		query		string					false	"Filter by anomaly type"
// @Param			limit		query		int						false	"Limit the number of results"	default(50)
// @Success		200			{object}	ListAnomaliesResponse	"Successfully retrieved anomaly flags"
// @Failure		400			{object}	response.ErrorResponse	"Invalid filter value"
// @Failure		500			{object}	response.ErrorResponse	"Failed to list anomaly flags"
// @Router			/anomalies [get]
func (app *application) handleListAnomalies(w http.ResponseWriter, r *http.Request) {
	filter := store.AnomalyFilter{
		Resolved: parseBoolQuery(r, "resolved"),
		Limit:    parseIntQuery(r, "limit", 50),
	}

	if raw := r.URL.Query().Get("severity"); raw != "" {
		severity, err := store.ParseAnomalySeverity(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Severity = severity
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		anomalyType, err := store.ParseAnomalyType(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Type = anomalyType
	}

	ctx := r.Context()
	flags, err := app.store.Anomalies.ListFlags(ctx, filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list anomaly flags: "+err.Error())
		return
	}

	response := &ListAnomaliesResponse{
		Success: true,
		Data:    flags,
		Message: "Successfully retrieved anomaly flags",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Resolve an anomaly flag
// @Description	Marks an anomaly flag as resolved. Flags are audit records and are never deleted.
// @Tags			Anomalies
// @Accept			json
// @Produce		json
// @Param			id			path		string									true	"Flag ID"
// @Param			resolution	body		object{resolved_by:string,notes:string}	true	"Resolution details"
// @Success		200			{object}	ResolveAnomalyResponse	"Flag resolved"
// @Failure		400			{object}	response.ErrorResponse	"Invalid request"
// @Failure		404			{object}	response.ErrorResponse	"Flag not found"
// @Failure		500			{object}	response.ErrorResponse	"Failed to resolve flag"
// @Router			/anomalies/{id}/resolve [post]
func (app *application) handleResolveAnomaly(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid flag ID")
		return
	}

	var input struct {
		ResolvedBy string  `json:"resolved_by"`
		Notes      *string `json:"notes"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if input.ResolvedBy == "" {
		writeJSONError(w, http.StatusBadRequest, "resolved_by is required")
		return
	}

	ctx := r.Context()
	flag, err := app.store.Anomalies.ResolveFlag(ctx, id, input.ResolvedBy, input.Notes)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "anomaly flag not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to resolve anomaly flag: "+err.Error())
		return
	}

	response := &ResolveAnomalyResponse{
		Success: true,
		Data:    flag,
		Message: "Anomaly flag resolved",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
