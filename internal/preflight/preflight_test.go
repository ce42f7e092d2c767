package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"distill/internal/generate"
	"distill/internal/preflight"
)

func TestCheckDirectoryAccessCreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	result := preflight.CheckDirectoryAccess("Output directory", path)
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestCheckDirectoryAccessUnconfigured(t *testing.T) {
	result := preflight.CheckDirectoryAccess("Output directory", " ")
	if result.Passed {
		t.Fatalf("expected failure, got %+v", result)
	}
}

func TestCheckGenerationMissingKey(t *testing.T) {
	result := preflight.CheckGeneration(context.Background(), generate.Config{})
	if result.Passed {
		t.Fatalf("expected failure, got %+v", result)
	}
	if !strings.Contains(result.Detail, "API key") {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckGenerationReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	result := preflight.CheckGeneration(context.Background(), generate.Config{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Model:   "test/model",
	})
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestAllPassed(t *testing.T) {
	if !preflight.AllPassed([]preflight.Result{{Passed: true}, {Passed: true}}) {
		t.Fatal("expected all passed")
	}
	if preflight.AllPassed([]preflight.Result{{Passed: true}, {}}) {
		t.Fatal("expected failure to be reported")
	}
}
