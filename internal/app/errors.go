package app

import "errors"

// Assistant errors.
var (
	// ErrClosed indicates the assistant has been shut down.
	ErrClosed = errors.New("assistant closed")

	// ErrNoSuchIssue indicates an issue index outside the current list.
	ErrNoSuchIssue = errors.New("no issue at that index")
)
