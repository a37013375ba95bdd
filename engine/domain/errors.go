package domain

import "errors"

// Failure kinds. Handlers map ErrNotFound to 404; everything else that
// escapes a pipeline is a 5xx.
var (
	// ErrNotFound means a search matched no stored professors.
	ErrNotFound = errors.New("no matching professor found")
	// ErrFetchFailed means the review page could not be retrieved
	// (timeout, connection error, or non-2xx status).
	ErrFetchFailed = errors.New("page fetch failed")
	// ErrStoreUnavailable means the vector store rejected or never
	// received a request. Not retried.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrInvalidURL means a submitted link is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
)
