package main

import (
	"errors"
	"net/http"

	"github.com/harborline/freightaudit/internal/response"
	"github.com/harborline/freightaudit/internal/review"
	"github.com/harborline/freightaudit/internal/store"
)

type ListReviewItemsResponse = response.PagedResponse[store.ReviewItem]
type GetReviewItemResponse = response.APIResponse[*store.ReviewItem]
type ReviewActionResponse = response.APIResponse[*store.ReviewItem]
type ReviewQueueStatsResponse = response.APIResponse[*store.ReviewQueueStats]

// @Summary		List review queue items
// @Description	Get a paginated view of the review queue, optionally filtered by status and item type.
// @Tags			Reviews
// @Produce		json
// @Param			status		query		string					false	"Filter by review status"
// @Param			item_type	query		string					false	"Filter by item type"
// @Param			page		query		int						false	"Page number"		default(1)
// @Param			per_page	query		int						false	"Items per page"	default(20)
// @Success		200			{object}	ListReviewItemsResponse	"Successfully retrieved review items"
// @Failure		400			{object}	response.ErrorResponse	"Invalid filter value"
// @Failure		500			{object}	response.ErrorResponse	"Failed to list review items"
// @Router			/reviews [get]
func (app *application) handleListReviewItems(w http.ResponseWriter, r *http.Request) {
	filter := store.ReviewFilter{
		Page:    parseIntQuery(r, "page", 1),
		PerPage: parseIntQuery(r, "per_page", 20),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := store.ParseReviewStatus(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("item_type"); raw != "" {
		itemType, err := store.ParseReviewItemType(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.ItemType = itemType
	}

	ctx := r.Context()
	items, total, err := app.queue.List(ctx, filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list review items: "+err.Error())
		return
	}

	response := &ListReviewItemsResponse{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
		Message: "Successfully retrieved review items",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Review queue statistics
// @Description	Get queue counts per review status.
// @Tags			Reviews
// @Produce		json
// @Success		200	{object}	ReviewQueueStatsResponse	"Successfully retrieved queue statistics"
// @Failure		500	{object}	response.ErrorResponse		"Failed to get queue statistics"
// @Router			/reviews/stats [get]
func (app *application) handleReviewQueueStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := app.queue.Stats(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get queue statistics: "+err.Error())
		return
	}

	response := &ReviewQueueStatsResponse{
		Success: true,
		Data:    stats,
		Message: "Successfully retrieved queue statistics",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get a review item
// @Description	Get one review queue item by ID.
// @Tags			Reviews
// @Produce		json
// @Param			id	path		string					true	"Review item ID"
// @Success		200	{object}	GetReviewItemResponse	"Successfully retrieved review item"
// @Failure		400	{object}	response.ErrorResponse	"Invalid review item ID"
// @Failure		404	{object}	response.ErrorResponse	"Review item not found"
// @Failure		500	{object}	response.ErrorResponse	"Failed to get review item"
// @Router			/reviews/{id} [get]
func (app *application) handleGetReviewItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid review item ID")
		return
	}

	ctx := r.Context()
	item, err := app.store.Reviews.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "review item not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to get review item: "+err.Error())
		return
	}

	response := &GetReviewItemResponse{
		Success: true,
		Data:    item,
		Message: "Successfully retrieved review item",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Act on a review item
// @Description	Applies a human decision (approve, reject, or escalate) to a pending review item. Items with a terminal disposition reject further actions.
// @Tags			Reviews
// @Accept			json
// @Produce		json
// @Param			id		path		string												true	"Review item ID"
// @Param			action	body		object{action:string,reviewed_by:string,notes:string}	true	"Review decision"
// @Success		200		{object}	ReviewActionResponse	"Decision applied"
// @Failure		400		{object}	response.ErrorResponse	"Invalid request"
// @Failure		404		{object}	response.ErrorResponse	"Review item not found"
// @Failure		409		{object}	response.ErrorResponse	"Item already reviewed"
// @Failure		500		{object}	response.ErrorResponse	"Failed to apply decision"
// @Router			/reviews/{id}/action [post]
func (app *application) handleReviewAction(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid review item ID")
		return
	}

	var input struct {
		Action     string  `json:"action"`
		ReviewedBy string  `json:"reviewed_by"`
		Notes      *string `json:"notes"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if input.ReviewedBy == "" {
		writeJSONError(w, http.StatusBadRequest, "reviewed_by is required")
		return
	}

	ctx := r.Context()
	item, err := app.queue.ProcessAction(ctx, id, review.Action(input.Action), input.ReviewedBy, input.Notes)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidAction):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, review.ErrAlreadyReviewed):
			writeJSONError(w, http.StatusConflict, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "review item not found")
		default:
			writeJSONError(w, http.StatusInternalServerError, "failed to apply review decision: "+err.Error())
		}
		return
	}

	response := &ReviewActionResponse{
		Success: true,
		Data:    item,
		Message: "Review decision applied",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
