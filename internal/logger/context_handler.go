package logger

import (
	"context"
	"log/slog"

	"github.com/mferrari98/cont-portal/internal/ctxutil"
)

// ContextHandler is a slog.Handler that automatically extracts tracing
// values (request ID, client IP) from the context and adds them as
// attributes to log records.
//
// This handler wraps another handler and enriches every record, so call
// sites never need to extract and pass these values manually.
//
// Reference: https://betterstack.com/community/guides/logging/golang-contextual-logging/
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// This delegates to the wrapped handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds the context tracing values to the record and delegates to
// the wrapped handler.
//
// Note: the context parameter is used solely to access values. Canceling
// it does not affect record processing (per the slog.Handler contract).
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}

	if ip := ctxutil.GetClientIP(ctx); ip != "" {
		r.AddAttrs(slog.String("client_ip", ip))
	}

	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the given group name prepended
// to the current group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
