package generate_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"distill/internal/generate"
	"distill/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *generate.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return generate.NewClient(generate.Config{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Model:   "test/model",
	})
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var gotAuth string
	var gotRequest map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  distilled text  "}}]}`))
	})

	content, err := client.Complete(context.Background(), "system", "user", generate.Options{Temperature: 0.4, MaxTokens: 256})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "distilled text" {
		t.Fatalf("content = %q", content)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotRequest["model"] != "test/model" {
		t.Fatalf("model = %v", gotRequest["model"])
	}
	if gotRequest["max_tokens"].(float64) != 256 {
		t.Fatalf("max_tokens = %v", gotRequest["max_tokens"])
	}
}

func TestCompleteToleratesDeltaSchema(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"delta":{"content":"streamed"}}]}`))
	})
	content, err := client.Complete(context.Background(), "", "user", generate.Options{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "streamed" {
		t.Fatalf("content = %q", content)
	}
}

func TestServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	_, err := client.Complete(context.Background(), "", "user", generate.Options{})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient classification, got %v", err)
	}
}

func TestAuthErrorIsConfiguration(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})
	_, err := client.Complete(context.Background(), "", "user", generate.Options{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration classification, got %v", err)
	}
}

func TestEmptyContentIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	})
	_, err := client.Complete(context.Background(), "", "user", generate.Options{})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient classification, got %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	client := generate.NewClient(generate.Config{Model: "m"})
	_, err := client.Complete(context.Background(), "", "user", generate.Options{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
