package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sonus/internal/config"
	"sonus/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), "Deep Work", 12, 0, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func newNtfyService(t *testing.T, endpoint string) notifications.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = endpoint
	return notifications.NewService(&cfg)
}

func TestNtfyServiceFormatsRunMessages(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)
	defer server.Close()

	svc := newNtfyService(t, server.URL)
	ctx := context.Background()

	if err := svc.NotifyRunStarted(ctx, "Deep Work", 3); err != nil {
		t.Fatalf("NotifyRunStarted returned error: %v", err)
	}
	if err := svc.NotifyRunCompleted(ctx, "Deep Work", 12, 0, 90*time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted returned error: %v", err)
	}
	if err := svc.NotifyRunCompleted(ctx, "Deep Work", 11, 1, 90*time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted returned error: %v", err)
	}

	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
	if requests[0].title != "Sonus - Run Started" || requests[0].body != "Chapterizing Deep Work (3 parts)" {
		t.Fatalf("unexpected start notification: %+v", requests[0])
	}
	if requests[1].title != "Sonus - Complete" || requests[1].body != "Deep Work: 12 chapters exported in 1m30s" {
		t.Fatalf("unexpected completion notification: %+v", requests[1])
	}
	if requests[2].title != "Sonus - Complete (with errors)" || requests[2].body != "Deep Work: 11 exported, 1 failed in 1m30s" {
		t.Fatalf("unexpected failure notification: %+v", requests[2])
	}
}

func TestNtfyServiceSendsErrorsHighPriority(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)
	defer server.Close()

	svc := newNtfyService(t, server.URL)
	err := svc.NotifyError(context.Background(), errors.New("probe failed"), "Deep Work")
	if err != nil {
		t.Fatalf("NotifyError returned error: %v", err)
	}

	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	got := requests[0]
	if got.title != "Sonus - Error" || got.priority != "high" {
		t.Fatalf("unexpected error notification: %+v", got)
	}
	if got.body != "Error with Deep Work: probe failed" {
		t.Fatalf("unexpected error body: %q", got.body)
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	defer server.Close()

	svc := newNtfyService(t, server.URL)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
