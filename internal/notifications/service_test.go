package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"distill/internal/config"
	"distill/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCapturingService(t *testing.T, runs, errs bool) (notifications.Service, *[]captured) {
	t.Helper()
	var got []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Runs = runs
	cfg.Notifications.Errors = errs
	return notifications.NewService(&cfg), &got
}

func TestNoopWhenUnconfigured(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunStarted(context.Background(), "note.txt"); err != nil {
		t.Fatalf("noop service returned error: %v", err)
	}
}

func TestRunCompletedPayload(t *testing.T) {
	svc, got := newCapturingService(t, true, true)
	if err := svc.NotifyRunCompleted(context.Background(), "Deep Work", 5, 42*time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("expected one request, got %d", len(*got))
	}
	req := (*got)[0]
	if req.title != "Distill - Run Complete" {
		t.Fatalf("title = %q", req.title)
	}
	if !strings.Contains(req.body, "5 artifacts") {
		t.Fatalf("body = %q", req.body)
	}
	if req.priority != "high" {
		t.Fatalf("priority = %q", req.priority)
	}
}

func TestErrorPayloadCarriesCause(t *testing.T) {
	svc, got := newCapturingService(t, true, true)
	if err := svc.NotifyError(context.Background(), errors.New("fetch failed"), "extract"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	req := (*got)[0]
	if !strings.Contains(req.body, "extract") || !strings.Contains(req.body, "fetch failed") {
		t.Fatalf("body = %q", req.body)
	}
}

func TestRunEventsRespectToggle(t *testing.T) {
	svc, got := newCapturingService(t, false, true)
	if err := svc.NotifyRunStarted(context.Background(), "note.txt"); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 0 {
		t.Fatalf("expected run event suppressed, got %d requests", len(*got))
	}
}
