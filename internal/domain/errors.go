package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested catalog entity does not exist
	ErrNotFound = errors.New("catalog entity not found")

	// ErrServerOffline indicates the catalog service is unreachable
	ErrServerOffline = errors.New("catalog service is unreachable")

	// ErrMalformedResponse indicates the catalog answered with a payload that could not be decoded
	ErrMalformedResponse = errors.New("malformed catalog response")

	// ErrInvalidComment indicates a comment failed validation before posting
	ErrInvalidComment = errors.New("invalid comment")

	// ErrForbidden indicates the current role may not perform the operation
	ErrForbidden = errors.New("operation not allowed for role")

	// ErrStoreClosed indicates the local store was used after Close
	ErrStoreClosed = errors.New("local store is closed")
)

// RemoteError is a failure reported by the remote data source.
// It carries a human-readable message and an optional underlying cause.
type RemoteError struct {
	Op      string // e.g. "GET /musicians"
	Status  int    // HTTP status, 0 when the request never completed
	Message string
	Cause   error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *RemoteError) Unwrap() error { return e.Cause }

// IsRemote reports whether err originated from the remote data source.
// Remote failures are recoverable: callers keep stale data or degrade.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) ||
		errors.Is(err, ErrServerOffline) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrMalformedResponse)
}
