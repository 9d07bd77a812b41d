// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	clientIPKey  contextKey = "ctxutil.clientIP"
)

// WithRequestID adds a request ID to the context for tracing.
// Request IDs are generated per HTTP request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// WithClientIP adds the calling client's IP address to the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP retrieves the client IP from the context.
// Returns the IP if found, empty string otherwise.
func GetClientIP(ctx context.Context) string {
	if v := ctx.Value(clientIPKey); v != nil {
		if ip, ok := v.(string); ok && ip != "" {
			return ip
		}
	}
	return ""
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// This creates a fresh context.Background() and copies only tracing values,
// avoiding memory leaks from retaining parent context references (Go issue #64478).
//
// Use for shared work started from a request, such as a coalesced directory
// reload that must not be canceled when the first caller disconnects.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}
	if ip := GetClientIP(ctx); ip != "" {
		newCtx = WithClientIP(newCtx, ip)
	}

	return newCtx
}
