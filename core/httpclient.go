package core

import (
	"net/http"
	"time"
)

// NewHTTPClient returns an HTTP client with the given fixed timeout.
//
// There is deliberately no retry or backoff layer: a timeout or connection
// failure aborts the current job, and in batch mode the whole run. The
// zero timeout disables the limit (used for long generation calls that
// carry their own context deadline).
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
