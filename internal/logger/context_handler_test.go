package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mferrari98/cont-portal/internal/ctxutil"
)

func TestContextHandler_Handle(t *testing.T) {
	tests := []struct {
		name           string
		setupContext   func(context.Context) context.Context
		expectedFields map[string]string
		absentFields   []string
	}{
		{
			name: "extracts all context values",
			setupContext: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithRequestID(ctx, "req-abc-123")
				ctx = ctxutil.WithClientIP(ctx, "203.0.113.9")
				return ctx
			},
			expectedFields: map[string]string{
				"request_id": "req-abc-123",
				"client_ip":  "203.0.113.9",
			},
		},
		{
			name: "extracts partial context values",
			setupContext: func(ctx context.Context) context.Context {
				return ctxutil.WithRequestID(ctx, "req-only")
			},
			expectedFields: map[string]string{
				"request_id": "req-only",
			},
			absentFields: []string{"client_ip"},
		},
		{
			name: "handles empty context",
			setupContext: func(ctx context.Context) context.Context {
				return ctx
			},
			absentFields: []string{"request_id", "client_ip"},
		},
		{
			name: "skips empty string values",
			setupContext: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithRequestID(ctx, "")
				ctx = ctxutil.WithClientIP(ctx, "198.51.100.7")
				return ctx
			},
			expectedFields: map[string]string{
				"client_ip": "198.51.100.7",
			},
			absentFields: []string{"request_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			baseHandler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})
			handler := NewContextHandler(baseHandler)
			logger := slog.New(handler)

			ctx := tt.setupContext(context.Background())
			logger.InfoContext(ctx, "test message")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}

			for field, want := range tt.expectedFields {
				if got, ok := entry[field].(string); !ok || got != want {
					t.Errorf("field %q = %v, want %q", field, entry[field], want)
				}
			}
			for _, field := range tt.absentFields {
				if _, ok := entry[field]; ok {
					t.Errorf("field %q present, want absent", field)
				}
			}
		})
	}
}

func TestContextHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	baseHandler := slog.NewJSONHandler(&buf, nil)
	handler := NewContextHandler(baseHandler).WithAttrs([]slog.Attr{slog.String("module", "api")})
	logger := slog.New(handler)

	ctx := ctxutil.WithRequestID(context.Background(), "req-777")
	logger.InfoContext(ctx, "test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["module"] != "api" {
		t.Errorf("module = %v, want %q", entry["module"], "api")
	}
	if entry["request_id"] != "req-777" {
		t.Errorf("request_id = %v, want %q (context extraction lost after WithAttrs)", entry["request_id"], "req-777")
	}
}

func TestContextHandler_Enabled(t *testing.T) {
	baseHandler := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	handler := NewContextHandler(baseHandler)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true with warn-level base handler")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false with warn-level base handler")
	}
}
