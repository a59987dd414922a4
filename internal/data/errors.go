package data

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired blocks write operations attempted while
	// unauthenticated, before any network call is issued.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrAuthenticationFailed means the login endpoint returned no usable
	// token. The session stays unauthenticated.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotFound means the requested id has no matching record in the
	// current data source.
	ErrNotFound = errors.New("not found")

	// ErrInvalidUpload means a process upload request failed validation
	// before any upstream call was made.
	ErrInvalidUpload = errors.New("invalid upload")
)

// UpstreamError wraps a network, server or payload failure on a write path
// (or on a read path when the fixture fallback is disabled).
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream failure: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
