package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher(client *http.Client) *Fetcher {
	return NewFetcher(client, FetcherOptions{BaseDelay: time.Millisecond}, nil)
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("<rss></rss>"))
	}))
	defer server.Close()

	f := testFetcher(server.Client())
	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if body != "<rss></rss>" {
		t.Fatalf("unexpected body: %q", body)
	}
	if !strings.HasPrefix(gotUA, "NewsIngest/") {
		t.Fatalf("unexpected user agent: %q", gotUA)
	}
	if !strings.Contains(gotAccept, "application/rss+xml") {
		t.Fatalf("unexpected accept header: %q", gotAccept)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := testFetcher(server.Client())
	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if body != "ok" {
		t.Fatalf("unexpected body: %q", body)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := testFetcher(server.Client())
	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}

	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("error should mention attempts: %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("error should carry the last failure: %v", err)
	}
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	f := testFetcher(nil)

	for _, raw := range []string{"", "ftp://example.org/feed", "not a url", "//missing-scheme"} {
		if _, err := f.Fetch(context.Background(), raw); err == nil {
			t.Fatalf("expected validation error for %q", raw)
		} else if !strings.Contains(err.Error(), "invalid URL") {
			t.Fatalf("expected invalid URL error for %q, got: %v", raw, err)
		}
	}
}

func TestFetchCancelledContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), FetcherOptions{BaseDelay: time.Minute}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Fetch(ctx, server.URL); err == nil {
		t.Fatal("expected cancellation error")
	}
}
