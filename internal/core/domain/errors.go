package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidReference indicates a channel argument matched nothing usable
	ErrInvalidReference = errors.New("invalid channel reference")

	// ErrFetchFailed indicates a platform fetch failed while rendering
	ErrFetchFailed = errors.New("fetch failed")

	// ErrReportInProgress indicates another report is being generated for the guild
	ErrReportInProgress = errors.New("report already in progress")

	// ErrForbidden indicates the requester lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrQueueFull indicates the job queue cannot accept more work
	ErrQueueFull = errors.New("queue full")

	// ErrServiceUnavailable indicates a backend could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ReferenceError reports the argument that could not be resolved to a container
type ReferenceError struct {
	Token  string
	Reason string
}

func (e *ReferenceError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %q", ErrInvalidReference, e.Token)
	}
	return fmt.Sprintf("%s: %q (%s)", ErrInvalidReference, e.Token, e.Reason)
}

func (e *ReferenceError) Unwrap() error {
	return ErrInvalidReference
}

// FetchError reports a failed render, carrying the label of the date range
// the report was meant to cover
type FetchError struct {
	RangeLabel string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s for %s: %v", ErrFetchFailed, e.RangeLabel, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrFetchFailed as well as the underlying cause
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
