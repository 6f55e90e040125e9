package content

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsingest/internal/domain"
)

const (
	minTitleLen   = 10
	minSummaryLen = 20
	maxTags       = 10
	maxTitleTags  = 5
)

// Formats tried when the parser could not parse the item date itself.
var dateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"02 Jan 2006 15:04:05 MST",
}

// Normalizer turns RawItems into canonical articles. It is pure: the only
// nondeterminism is the injected clock used as the missing-date fallback.
type Normalizer struct {
	defaultCategory string
	defaultLanguage string
	clock           func() time.Time
	logger          *slog.Logger
}

// NormalizerOptions carry caller defaults applied when inference fails.
type NormalizerOptions struct {
	DefaultCategory string
	DefaultLanguage string
	Clock           func() time.Time
}

// NewNormalizer builds a normalizer; nil clock means time.Now.
func NewNormalizer(opts NormalizerOptions, log *slog.Logger) *Normalizer {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Normalizer{
		defaultCategory: opts.DefaultCategory,
		defaultLanguage: opts.DefaultLanguage,
		clock:           opts.Clock,
		logger:          log,
	}
}

// Normalize converts one raw item and validates the result.
func (n *Normalizer) Normalize(item domain.RawItem, source domain.Source) (domain.CanonicalArticle, error) {
	title := CleanText(item.Title)
	description := CleanText(item.Description)
	contentText := CleanText(item.Content)

	articleURL := CleanURL(strings.TrimSpace(item.Link))

	article := domain.CanonicalArticle{
		Title:          title,
		Slug:           Slug(title),
		Summary:        summarize(description, contentText, title),
		ContentSnippet: snippet(contentText),
		ImageURL:       ExtractImage(item),
		ArticleURL:     articleURL,
		OriginalURL:    CanonicalURL(articleURL),
		SourceName:     source.Name,
		SourceURL:      source.SiteURL,
		Category:       InferCategory(item.Categories, title, description, n.defaultCategory),
		Tags:           extractTags(item.Categories, title),
		Language:       DetectLanguage(title+" "+description, n.defaultLanguage),
		PublishedAt:    n.publishedAt(item),
		ContentHash:    Hash(articleURL, title),
		Status:         domain.StatusPendingApproval,
	}

	if err := validate(article); err != nil {
		return domain.CanonicalArticle{}, err
	}

	return article, nil
}

// NormalizeAll converts a batch, silently dropping items that fail
// validation. A drop never fails the batch.
func (n *Normalizer) NormalizeAll(items []domain.RawItem, source domain.Source) []domain.CanonicalArticle {
	articles := make([]domain.CanonicalArticle, 0, len(items))
	for _, item := range items {
		article, err := n.Normalize(item, source)
		if err != nil {
			n.logger.Debug("dropping invalid item",
				"source", source.Name, "link", item.Link, "error", err)
			continue
		}
		articles = append(articles, article)
	}
	return articles
}

// summarize prefers description, then content, then title.
func summarize(description, contentText, title string) string {
	for _, candidate := range []string{description, contentText, title} {
		if candidate != "" {
			return Truncate(candidate, summaryLimit)
		}
	}
	return ""
}

func snippet(contentText string) string {
	runes := []rune(contentText)
	if len(runes) <= snippetLimit {
		return contentText
	}
	return string(runes[:snippetLimit])
}

// extractTags unions lowercased categories with up to five title words
// longer than four characters, capped at ten, no duplicates.
func extractTags(categories []string, title string) []string {
	tags := make([]string, 0, maxTags)
	seen := map[string]bool{}

	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] || len(tags) >= maxTags {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, category := range categories {
		add(category)
	}

	titleWords := 0
	for _, word := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if titleWords >= maxTitleTags {
			break
		}
		if len(word) > 4 && !seen[word] {
			add(word)
			titleWords++
		}
	}

	return tags
}

// publishedAt uses the parsed date, then the raw date string, then now.
// The now fallback is a documented lossy default, not an error.
func (n *Normalizer) publishedAt(item domain.RawItem) time.Time {
	if item.PublishedAt != nil && !item.PublishedAt.IsZero() {
		return item.PublishedAt.UTC()
	}

	raw := strings.TrimSpace(item.Published)
	if raw != "" {
		for _, format := range dateFormats {
			if parsed, err := time.Parse(format, raw); err == nil {
				return parsed.UTC()
			}
		}
	}

	return n.clock().UTC()
}

func validate(article domain.CanonicalArticle) error {
	if len([]rune(article.Title)) < minTitleLen {
		return fmt.Errorf("title too short: %q", article.Title)
	}
	if len([]rune(article.Summary)) < minSummaryLen {
		return fmt.Errorf("summary too short for %q", article.Title)
	}
	if article.ArticleURL == "" {
		return fmt.Errorf("missing article url for %q", article.Title)
	}
	if article.SourceName == "" {
		return fmt.Errorf("missing source name for %q", article.Title)
	}
	if article.PublishedAt.IsZero() {
		return fmt.Errorf("missing published date for %q", article.Title)
	}
	return nil
}
