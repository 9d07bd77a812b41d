// Package source fetches the directory workbook from its configured
// backend (HTTP, local file or S3-compatible object storage) and
// validates that the payload plausibly is a spreadsheet before it
// reaches the decoder.
package source

import (
	"context"
	"fmt"
	"strings"

	domerrors "github.com/mferrari98/cont-portal/internal/errors"
)

// Backend names used in logs, metrics and SourceError values.
const (
	BackendHTTP   = "http"
	BackendFile   = "file"
	BackendObject = "s3"
)

// sniffWindow is how many leading payload bytes are inspected for
// error-page markers.
const sniffWindow = 200

// errorMarkers are fragments of upstream error pages. The file server
// hosting the workbook has been observed serving its 404 page with
// HTTP 200, so the status code alone cannot be trusted.
var errorMarkers = []string{
	"<!doctype html",
	"<html",
	"cannot get",
	"not found",
	"404",
}

// Source is a versioned supplier of the directory workbook payload.
type Source interface {
	// Name identifies the backend: http, file or s3.
	Name() string

	// Ref is the location the payload is read from (URL, path or
	// bucket/key).
	Ref() string

	// Stamp returns a cheap version marker for the current payload
	// without downloading it. An empty stamp means the backend cannot
	// version its payload and callers must assume it changed.
	Stamp(ctx context.Context) (string, error)

	// Fetch downloads the payload together with the stamp it
	// corresponds to.
	Fetch(ctx context.Context) ([]byte, string, error)
}

// ValidatePayload rejects payloads that cannot be a workbook: HTML
// content types, empty bodies, and bodies that open with an error-page
// marker. The sniff is deliberately crude; a rare false positive on a
// legitimate workbook is preferable to serving an error page as data.
func ValidatePayload(payload []byte, contentType string) error {
	if ct := strings.ToLower(contentType); strings.Contains(ct, "text/html") {
		return fmt.Errorf("%w: content type %q", domerrors.ErrDirectoryMalformed, contentType)
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty payload", domerrors.ErrDirectoryMalformed)
	}

	head := payload
	if len(head) > sniffWindow {
		head = head[:sniffWindow]
	}
	sample := strings.ToLower(string(head))
	for _, marker := range errorMarkers {
		if strings.Contains(sample, marker) {
			return fmt.Errorf("%w: payload contains error page marker %q", domerrors.ErrDirectoryMalformed, marker)
		}
	}
	return nil
}
