package services_test

import (
	"errors"
	"testing"

	"distill/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrTransient, "extract", "fetch", "remote host unreachable", cause)

	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "generate", "complete", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient fallback, got %v", err)
	}
}

func TestMessageStripsSentinelPrefix(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "classify", "", "unsupported input", nil)
	if got := services.Message(err); got != "classify: unsupported input" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestMessageNil(t *testing.T) {
	if got := services.Message(nil); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}
}
