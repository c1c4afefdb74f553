package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/omarshaarawi/ffstats/internal/config"
)

func testClient(url string) *Client {
	c := NewClient(config.ESPN{BaseURL: url, LeagueID: "123", Year: "2018"})
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		if got := r.URL.Query().Get("leagueId"); got != "123" {
			t.Errorf("leagueId = %q, want 123", got)
		}
		w.Write([]byte(`<html><body><h3 class="team-name">Gronk Smash (GRNK)</h3></body></html>`))
	}))
	defer srv.Close()

	doc, err := testClient(srv.URL).Get(context.Background(), "clubhouse", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := doc.Find("h3.team-name").Text(); got != "Gronk Smash (GRNK)" {
		t.Errorf("team name = %q", got)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server called %d times, want 2", n)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Get(context.Background(), "schedule", nil); err == nil {
		t.Fatal("Get succeeded on 404")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}

func TestClient_CancelledDuringRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.retryDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.Get(ctx, "schedule", nil); err != context.DeadlineExceeded {
		t.Errorf("Get error = %v, want context.DeadlineExceeded", err)
	}
}
