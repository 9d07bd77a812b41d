// Package timeouts provides centralized timeout constants for the application.
//
// These values are tuned around two facts:
//   - The upstream file server hosting the directory workbook is slow and
//     occasionally serves its error page with HTTP 200, so fetches need
//     generous timeouts and patient backoff.
//   - Parsing the workbook itself is cheap (hundreds of rows, in-memory),
//     so everything after the fetch completes in milliseconds.
//
// # Fetch budget
//
// A cold reload is fetch + decode + extract. The fetch dominates: the
// workbook is a few hundred KB but the upstream can take tens of seconds
// during office hours. SourceFetch caps a single request; WarmLoad caps
// the whole startup load including retries.
package timeouts

import "time"

// HTTP server timeouts
const (
	// ServerHTTPRead is the HTTP server read timeout.
	// Requests are small (query strings only), so this can be short.
	ServerHTTPRead = 10 * time.Second

	// ServerHTTPWrite is the HTTP server write timeout.
	// Must accommodate a synchronous reload triggered via the API,
	// which performs a full fetch in the request path.
	ServerHTTPWrite = 90 * time.Second

	// ServerHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	ServerHTTPIdle = 120 * time.Second
)

// Source fetch timeouts
const (
	// SourceFetch is the timeout for a single request to the directory
	// source (HTTP GET, file read or object download).
	SourceFetch = 60 * time.Second

	// SourceRetryInitial is the initial delay before retrying a failed
	// fetch. Uses exponential backoff: 4s -> 8s -> 16s -> 32s
	SourceRetryInitial = 4 * time.Second

	// SourceRetryMax caps the per-attempt backoff delay so a high retry
	// count does not stretch a reload past the warm-load budget.
	SourceRetryMax = 60 * time.Second
)

// Background job intervals
const (
	// WarmLoad is the timeout for the initial background load at startup,
	// including fetch retries.
	WarmLoad = 3 * time.Minute

	// RefreshMinimum is the lowest accepted periodic refresh interval.
	// Anything shorter would hammer the upstream for a spreadsheet that
	// changes a few times a month.
	RefreshMinimum = time.Minute

	// RefreshDefault is the periodic refresh interval applied when none
	// is configured. The workbook changes at most a few times a week, so
	// 15 minutes keeps snapshots fresh without noticeable upstream load.
	RefreshDefault = 15 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second

	// SentryFlush bounds the wait for buffered error events during
	// shutdown.
	SentryFlush = 2 * time.Second
)

// Healthcheck
const (
	// HealthcheckRequest is the timeout for the container healthcheck probe.
	HealthcheckRequest = 5 * time.Second
)
