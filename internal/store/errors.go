package store

import "errors"

// ErrNotFound is returned when a row lookup by identity matches nothing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyReviewed is returned when a review transition loses to a
// concurrent decision that already moved the item to a terminal state.
var ErrAlreadyReviewed = errors.New("review item already has a terminal disposition")
