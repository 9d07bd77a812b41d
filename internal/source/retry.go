package source

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"
)

// permanentError marks an error that must not be retried, such as a 404
// or a payload that failed validation.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so RetryWithBackoff gives up immediately and
// returns the underlying error unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff retries a function with exponential backoff and jitter.
// Stops retrying immediately if the error is marked Permanent.
//
// maxRetries: maximum number of retry attempts (0 = no retry, just try once)
// initialDelay: delay before the first retry
// maxDelay: cap applied to the per-attempt delay (0 = uncapped)
//
// Backoff formula: delay = min(initialDelay * 2^attempt, maxDelay) ± 25% jitter
// Example with initialDelay=4s, maxRetries=4:
//
//	attempt 0: immediate (first try)
//	attempt 1: ~4s  (3s - 5s)
//	attempt 2: ~8s  (6s - 10s)
//	attempt 3: ~16s (12s - 20s)
//	attempt 4: ~32s (24s - 40s)
func RetryWithBackoff(ctx context.Context, maxRetries int, initialDelay, maxDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		// Don't retry permanent errors
		var permErr *permanentError
		if errors.As(err, &permErr) {
			return permErr.Unwrap()
		}

		// Don't delay after the last attempt
		if attempt == maxRetries {
			break
		}

		// Calculate exponential backoff delay
		delay := time.Duration(float64(initialDelay) * math.Pow(2, float64(attempt)))
		if maxDelay > 0 && delay > maxDelay {
			delay = maxDelay
		}

		// Add jitter (±25%)
		halfDelay := int64(delay) / 2
		if halfDelay == 0 {
			halfDelay = 1 // Prevent division by zero
		}
		// Use crypto/rand.Int for statistically uniform random number without overflow risk
		jitterBig, err := rand.Int(rand.Reader, big.NewInt(halfDelay))
		if err != nil {
			// Fallback to zero jitter on crypto failure (extremely rare)
			jitterBig = big.NewInt(0)
		}
		jitter := time.Duration(jitterBig.Int64())
		delay = delay - delay/4 + jitter

		// Wait for delay or context cancellation
		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
