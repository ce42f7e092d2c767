package logging_test

import (
	"context"
	"strings"
	"testing"

	"distill/internal/logging"
	"distill/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewConsoleDefault(t *testing.T) {
	logger, err := logging.New(logging.Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestWithContextAddsRunAndNodeFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-123")
	ctx = services.WithNode(ctx, "extract")

	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	joined := strings.Join(keys, ",")
	if !strings.Contains(joined, logging.FieldRunID) || !strings.Contains(joined, logging.FieldNode) {
		t.Fatalf("unexpected field keys: %v", keys)
	}
}

func TestWithContextNilLoggerFallsBackToNop(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	// Must not panic when used.
	logger.Info("noop")
}
