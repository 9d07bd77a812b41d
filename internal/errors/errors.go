// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the directory pipeline.
// Use errors.Is() to check these errors in your code.
var (
	// ErrDirectoryNotFound indicates the source spreadsheet does not exist
	// (missing file, HTTP 404, absent object key). Not retryable.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrDirectoryMalformed indicates the source bytes could not be
	// processed as a directory spreadsheet: HTML content type, sniffed
	// error page, decode failure or a workbook with no sheets.
	// Not retryable.
	ErrDirectoryMalformed = errors.New("could not process directory")

	// ErrDirectoryEmpty indicates the spreadsheet decoded fine but yielded
	// zero usable rows. A malformed-source variant, so errors.Is also
	// matches ErrDirectoryMalformed.
	ErrDirectoryEmpty = fmt.Errorf("%w: no usable rows", ErrDirectoryMalformed)

	// ErrSourceUnavailable indicates a transient I/O failure while
	// fetching the source bytes. Callers may retry.
	ErrSourceUnavailable = errors.New("directory source unavailable")

	// ErrNoSnapshot indicates no parsed record set exists yet and the
	// last load attempt failed.
	ErrNoSnapshot = errors.New("directory not available")
)

// Retryable reports whether err is worth retrying. Only transient source
// failures qualify; malformed or missing sources will not fix themselves.
func Retryable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// Kind classifies err into a stable label for logs and metrics:
// "not_found", "malformed", "unavailable" or "internal". A nil err
// yields the empty string.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDirectoryNotFound):
		return "not_found"
	case errors.Is(err, ErrDirectoryMalformed):
		return "malformed"
	case errors.Is(err, ErrSourceUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}

// SourceError represents a source fetch failure with context.
type SourceError struct {
	Backend    string // "http", "file" or "s3"
	Ref        string // URL, path or object key
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("source error (%s %s, status=%d): %v", e.Backend, e.Ref, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("source error (%s %s): %v", e.Backend, e.Ref, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new source error.
func NewSourceError(backend, ref string, statusCode int, err error) *SourceError {
	return &SourceError{
		Backend:    backend,
		Ref:        ref,
		StatusCode: statusCode,
		Err:        err,
	}
}
