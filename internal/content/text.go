package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	summaryLimit = 300
	slugLimit    = 100
	snippetLimit = 500
)

var (
	tagExpr        = regexp.MustCompile(`<[^>]*>`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
	nonSlugExpr    = regexp.MustCompile(`[^a-z0-9]+`)
)

// CleanText strips HTML tags, collapses whitespace runs to single spaces
// and trims. Entities are left as-is; tag removal is the only decoding.
func CleanText(s string) string {
	s = tagExpr.ReplaceAllString(s, " ")
	s = whitespaceExpr.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate cuts cleaned text at the last word boundary before limit runes
// and appends an ellipsis. Text within the limit is returned unchanged.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	cut := limit
	for i := limit - 1; i > 0; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}

	return strings.TrimSpace(string(runes[:cut])) + "..."
}

// Slug lowercases the title, folds non-alphanumeric runs into single
// hyphens and caps the result at 100 characters.
func Slug(title string) string {
	s := strings.ToLower(title)
	s = nonSlugExpr.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > slugLimit {
		s = strings.Trim(s[:slugLimit], "-")
	}
	return s
}

// CleanURL strips utm_* tracking parameters, keeping everything else.
// Unparsable input passes through unchanged.
func CleanURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := parsed.Query()
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// CanonicalURL reduces a URL to scheme, host and path. This is the unique
// key articles are stored under. Unparsable input passes through.
func CanonicalURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	canonical := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: parsed.Path}
	return canonical.String()
}

// Hash returns the hex SHA-256 digest of articleURL::title. Identical
// inputs always produce the identical hash; it is the cross-run dedup key.
func Hash(articleURL, title string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s::%s", articleURL, title)))
	return hex.EncodeToString(sum[:])
}
