package nlparse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// completionServer fakes the chat-completions endpoint, returning the
// given message content.
func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Missing auth header, got '%s'", r.Header.Get("Authorization"))
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("Expected 2 messages, got %d", len(req.Messages))
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
			return
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestClient(url string) *Client {
	c := NewClient("test-key", url, "test-model")
	c.now = func() time.Time {
		return time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	}
	return c
}

func TestParse(t *testing.T) {
	t.Parallel()

	srv := completionServer(t, `{"title":"Pay rent","due_date":"2026-09-01","urgency":4}`, http.StatusOK)
	client := newTestClient(srv.URL)

	parsed, err := client.Parse(context.Background(), "pay rent by sept 1, pretty important")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsed.Title != "Pay rent" {
		t.Errorf("Expected title 'Pay rent', got '%s'", parsed.Title)
	}
	if parsed.Urgency != 4 {
		t.Errorf("Expected urgency 4, got %f", parsed.Urgency)
	}
	if parsed.DueDate == nil {
		t.Fatal("Expected a due date")
	}
	// Bare dates anchor at 09:00
	if parsed.DueDate.Hour() != 9 || parsed.DueDate.Day() != 1 {
		t.Errorf("Expected Sept 1 09:00, got %v", parsed.DueDate)
	}
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	srv := completionServer(t, `{"title":"","due_date":null}`, http.StatusOK)
	client := newTestClient(srv.URL)

	parsed, err := client.Parse(context.Background(), "do the thing")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Empty title falls back to the raw input; urgency defaults to 3
	if parsed.Title != "do the thing" {
		t.Errorf("Expected fallback title, got '%s'", parsed.Title)
	}
	if parsed.Urgency != 3 {
		t.Errorf("Expected default urgency 3, got %f", parsed.Urgency)
	}
	if parsed.DueDate != nil {
		t.Errorf("Expected no due date, got %v", parsed.DueDate)
	}
}

func TestParseClampsUrgency(t *testing.T) {
	t.Parallel()

	srv := completionServer(t, `{"title":"x","urgency":11}`, http.StatusOK)
	client := newTestClient(srv.URL)

	parsed, err := client.Parse(context.Background(), "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.Urgency != 5 {
		t.Errorf("Expected urgency clamped to 5, got %f", parsed.Urgency)
	}
}

func TestParseRFC3339DueDate(t *testing.T) {
	t.Parallel()

	srv := completionServer(t, `{"title":"standup","due_date":"2026-08-24T09:30:00Z"}`, http.StatusOK)
	client := newTestClient(srv.URL)

	parsed, err := client.Parse(context.Background(), "standup tomorrow 9:30")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC)
	if parsed.DueDate == nil || !parsed.DueDate.Equal(want) {
		t.Errorf("Expected %v, got %v", want, parsed.DueDate)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	// Missing API key
	client := NewClient("", "", "")
	if _, err := client.Parse(context.Background(), "x"); err == nil {
		t.Error("Expected error without API key")
	}

	// Empty input
	srv := completionServer(t, `{}`, http.StatusOK)
	client = newTestClient(srv.URL)
	if _, err := client.Parse(context.Background(), "   "); err == nil {
		t.Error("Expected error for empty input")
	}

	// Client errors are not retried
	srv = completionServer(t, "", http.StatusBadRequest)
	client = newTestClient(srv.URL)
	_, err := client.Parse(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("Expected API error message, got %v", err)
	}

	// Invalid model JSON
	srv = completionServer(t, `not json`, http.StatusOK)
	client = newTestClient(srv.URL)
	if _, err := client.Parse(context.Background(), "x"); err == nil {
		t.Error("Expected error for invalid model JSON")
	}
}
