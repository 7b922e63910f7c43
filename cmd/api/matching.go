package main

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/harborline/freightaudit/internal/match"
	"github.com/harborline/freightaudit/internal/response"
)

type ThreeWayMatchResponse = response.APIResponse[match.Result]

// @Summary		Run a 3-way document match
// @Description	Compares the latest extractions of a purchase order, bill of lading, and commercial invoice.
// @Tags			Matching
// @Accept			json
// @Produce		json
// @Param			match	body		object{po_document_id:string,bol_document_id:string,invoice_document_id:string}	true	"Document IDs to match (at least 2 of 3)"
// @Success		200		{object}	ThreeWayMatchResponse	"Match computed"
// @Failure		400		{object}	response.ErrorResponse	"Invalid request payload"
// @Failure		500		{object}	response.ErrorResponse	"Match failed"
// @Router			/matching/three-way [post]
func (app *application) handleThreeWayMatch(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PODocumentID      *uuid.UUID `json:"po_document_id"`
		BOLDocumentID     *uuid.UUID `json:"bol_document_id"`
		InvoiceDocumentID *uuid.UUID `json:"invoice_document_id"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	provided := 0
	for _, id := range []*uuid.UUID{input.PODocumentID, input.BOLDocumentID, input.InvoiceDocumentID} {
		if id != nil {
			provided++
		}
	}
	if provided < 2 {
		writeJSONError(w, http.StatusBadRequest, "at least 2 of the 3 document IDs are required")
		return
	}

	ctx := r.Context()
	result, err := app.matcher.Match(ctx, match.Input{
		PODocumentID:      input.PODocumentID,
		BOLDocumentID:     input.BOLDocumentID,
		InvoiceDocumentID: input.InvoiceDocumentID,
	})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to compute match: "+err.Error())
		return
	}

	response := &ThreeWayMatchResponse{
		Success: true,
		Data:    result,
		Message: "Match computed",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
