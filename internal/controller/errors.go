package controller

import "errors"

var (
	// ErrLookupFailed marks a failed suggestion lookup. It is logged, never shown.
	ErrLookupFailed = errors.New("suggestion lookup failed")

	// ErrDetailFetchFailed marks a failed detail fetch; it ends in PhaseFailed.
	ErrDetailFetchFailed = errors.New("detail fetch failed")

	errEmptyDetail = errors.New("empty detail payload")
)
