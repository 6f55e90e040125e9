package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateFeedURL checks that a feed URL is absolute http(s). It is the
// fail-fast gate run before any network activity; failures here are never
// retried.
func ValidateFeedURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("invalid URL: empty feed url")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return nil
}
