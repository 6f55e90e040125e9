package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"newsingest/internal/domain"
	"newsingest/internal/ports"
)

const acceptHeader = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"

// Fetcher retrieves raw feed bytes over HTTP with per-attempt timeout and
// linear-backoff retry. Only transient failures (network error, non-2xx)
// are retried; a bad URL fails before any request is made.
type Fetcher struct {
	client    *http.Client
	userAgent string
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// FetcherOptions tune retry behavior; zero values fall back to defaults.
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string
	Attempts  int
	BaseDelay time.Duration
}

// NewFetcher wires an HTTP client; nil client gets the configured timeout.
func NewFetcher(client *http.Client, opts FetcherOptions, log *slog.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "NewsIngest/1.0 (+https://newsingest.app)"
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		attempts:  opts.Attempts,
		baseDelay: opts.BaseDelay,
		logger:    log,
	}
}

// Fetch returns the feed body as text. Each failed attempt waits
// attempt x baseDelay before the next; exhausted retries surface the
// last failure. A malformed URL fails before the first request.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (string, error) {
	if err := domain.ValidateFeedURL(feedURL); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		body, err := f.fetchOnce(ctx, feedURL)
		if err == nil {
			if attempt > 1 {
				f.logger.Info("feed fetched after retry", "url", feedURL, "attempt", attempt)
			}
			return body, nil
		}
		lastErr = err
		f.logger.Warn("feed fetch attempt failed",
			"url", feedURL, "attempt", attempt, "error", err)

		if attempt == f.attempts {
			break
		}

		delay := time.Duration(attempt) * f.baseDelay
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("fetch %s cancelled: %w", feedURL, ctx.Err())
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("fetch %s failed after %d attempts: %w", feedURL, f.attempts, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, feedURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}
