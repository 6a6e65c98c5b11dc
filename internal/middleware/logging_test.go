package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"connectrpc.com/connect"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level slog.Level
	}{
		{"success", nil, slog.LevelInfo},
		{"not found", connect.NewError(connect.CodeNotFound, errors.New("group missing")), slog.LevelWarn},
		{"invalid argument", connect.NewError(connect.CodeInvalidArgument, errors.New("bad amount")), slog.LevelWarn},
		{"internal", connect.NewError(connect.CodeInternal, errors.New("disk full")), slog.LevelError},
		{"plain error", errors.New("boom"), slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := outcome(tt.err); got != tt.level {
				t.Errorf("level = %v, want %v", got, tt.level)
			}
		})
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("group missing"))
	}

	_, err := LoggingInterceptor()(failing)(context.Background(), connect.NewRequest(&struct{}{}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("error not passed through: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "WARN" || entry["msg"] != "RPC rejected" || entry["code"] != "not_found" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Errorf("missing duration_ms: %v", entry)
	}
}
