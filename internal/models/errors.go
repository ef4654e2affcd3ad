package models

import "errors"

// Sentinel errors shared across the repository, service and handler layers.
// Wrapped values are matched with errors.Is.
var (
	// ErrInvalidArgument marks malformed input rejected before any state is
	// touched: bad date strings, negative study days, non-positive review
	// offsets, unknown book kinds.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a reference to a book that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks a reference to a book owned by a different user.
	ErrForbidden = errors.New("forbidden")
)
