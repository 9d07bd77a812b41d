package source

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/corpix/uarand"

	domerrors "github.com/mferrari98/cont-portal/internal/errors"
	"github.com/mferrari98/cont-portal/internal/timeouts"
)

// HTTPSource downloads the workbook from a fixed URL.
//
// The upstream is a plain file server with no API, so the source
// presents itself as a browser: rotating User-Agent, browser Accept
// headers, gzip support. Without these the server occasionally answers
// with its error page instead of the file.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	userAgents []string
	maxRetries int

	// retry delays, overridable in tests
	retryInitial time.Duration
	retryMax     time.Duration
}

// NewHTTPSource creates an HTTP source for the given URL.
func NewHTTPSource(url string, timeout time.Duration, maxRetries int) *HTTPSource {
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgents:   defaultUserAgents(),
		maxRetries:   maxRetries,
		retryInitial: timeouts.SourceRetryInitial,
		retryMax:     timeouts.SourceRetryMax,
	}
}

// Name implements Source.
func (s *HTTPSource) Name() string { return BackendHTTP }

// Ref implements Source.
func (s *HTTPSource) Ref() string { return s.url }

// Stamp issues a HEAD request and derives the version marker from the
// ETag or Last-Modified header. Servers exposing neither yield an empty
// stamp, which callers treat as always-changed.
func (s *HTTPSource) Stamp(ctx context.Context) (string, error) {
	var stamp string

	err := RetryWithBackoff(ctx, s.maxRetries, s.retryInitial, s.retryMax, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
		if err != nil {
			return Permanent(fmt.Errorf("create request: %w", err))
		}
		s.setHeaders(req)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return domerrors.NewSourceError(BackendHTTP, s.url, 0,
				fmt.Errorf("%w: %v", domerrors.ErrSourceUnavailable, err))
		}
		_ = resp.Body.Close()

		if err := s.checkStatus(resp.StatusCode); err != nil {
			return err
		}

		stamp = versionStamp(resp.Header)
		return nil
	})
	if err != nil {
		return "", err
	}
	return stamp, nil
}

// Fetch downloads the workbook bytes with retries and validates them
// before returning.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, string, error) {
	var payload []byte
	var stamp string

	err := RetryWithBackoff(ctx, s.maxRetries, s.retryInitial, s.retryMax, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return Permanent(fmt.Errorf("create request: %w", err))
		}
		s.setHeaders(req)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return domerrors.NewSourceError(BackendHTTP, s.url, 0,
				fmt.Errorf("%w: %v", domerrors.ErrSourceUnavailable, err))
		}
		defer func() { _ = resp.Body.Close() }()

		if err := s.checkStatus(resp.StatusCode); err != nil {
			return err
		}

		// Handle gzip encoding
		var reader io.Reader = resp.Body
		if resp.Header.Get("Content-Encoding") == "gzip" {
			gzipReader, err := gzip.NewReader(resp.Body)
			if err != nil {
				return Permanent(domerrors.NewSourceError(BackendHTTP, s.url, resp.StatusCode,
					fmt.Errorf("%w: decompress gzip: %v", domerrors.ErrDirectoryMalformed, err)))
			}
			defer func() { _ = gzipReader.Close() }()
			reader = gzipReader
		}

		body, err := io.ReadAll(reader)
		if err != nil {
			return domerrors.NewSourceError(BackendHTTP, s.url, resp.StatusCode,
				fmt.Errorf("%w: read body: %v", domerrors.ErrSourceUnavailable, err))
		}

		if err := ValidatePayload(body, resp.Header.Get("Content-Type")); err != nil {
			return Permanent(domerrors.NewSourceError(BackendHTTP, s.url, resp.StatusCode, err))
		}

		payload = body
		stamp = versionStamp(resp.Header)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return payload, stamp, nil
}

// checkStatus maps an HTTP status code onto the domain error kinds.
func (s *HTTPSource) checkStatus(status int) error {
	if status >= 200 && status < 300 {
		return nil
	}

	switch status {
	case http.StatusNotFound, http.StatusForbidden, http.StatusUnauthorized, http.StatusGone:
		// Client errors - don't retry
		return Permanent(domerrors.NewSourceError(BackendHTTP, s.url, status, domerrors.ErrDirectoryNotFound))
	default:
		// Rate limiting and server errors - retry with backoff
		return domerrors.NewSourceError(BackendHTTP, s.url, status,
			fmt.Errorf("%w: status %d", domerrors.ErrSourceUnavailable, status))
	}
}

func (s *HTTPSource) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", s.randomUserAgent())
	req.Header.Set("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/vnd.ms-excel;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9,en;q=0.7")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
}

// randomUserAgent returns a random user agent string
func (s *HTTPSource) randomUserAgent() string {
	if len(s.userAgents) == 0 {
		return uarand.GetRandom()
	}
	return s.userAgents[time.Now().UnixNano()%int64(len(s.userAgents))]
}

// versionStamp derives a payload version marker from response headers,
// preferring the ETag over Last-Modified.
func versionStamp(header http.Header) string {
	if etag := header.Get("ETag"); etag != "" {
		etag = strings.TrimPrefix(etag, "W/")
		return strings.Trim(etag, "\"")
	}
	return header.Get("Last-Modified")
}

// defaultUserAgents returns a list of common browser user agent strings
func defaultUserAgents() []string {
	return []string{
		// Chrome on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",

		// Chrome on macOS
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",

		// Firefox on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",

		// Firefox on Linux
		"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",

		// Safari on macOS
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",

		// Edge on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",

		// Chrome on Linux
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	}
}
