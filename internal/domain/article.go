package domain

import "time"

// Source is a configured feed endpoint managed by the admin surface.
// The pipeline reads sources; it never creates or deletes them.
type Source struct {
	ID       string
	Name     string
	FeedURL  string
	SiteURL  string
	IsActive bool
}

// RawItem is the uniform per-item representation produced by the feed
// parser. It is ephemeral: consumed by the normalizer and never persisted.
// Optional media fields are populated once at parse time so the normalizer
// does not probe for extension keys.
type RawItem struct {
	Title             string
	Description       string
	Content           string
	Link              string
	Published         string
	PublishedAt       *time.Time
	Categories        []string
	EnclosureURL      string
	EnclosureType     string
	MediaContentURL   string
	MediaThumbnailURL string
}

// FeedInfo carries feed-level metadata, independent of item parsing.
type FeedInfo struct {
	Title       string
	Description string
	Link        string
	Language    string
}

// ArticleStatus enumerates the moderation lifecycle of a stored article.
type ArticleStatus string

const (
	StatusPendingApproval ArticleStatus = "pending_approval"
	StatusApproved        ArticleStatus = "approved"
	StatusRejected        ArticleStatus = "rejected"
)

// CanonicalArticle is the normalized article shape written to storage.
// OriginalURL (query/fragment-stripped) is the unique dedup key at the
// store layer; ContentHash is the cross-run dedup key.
type CanonicalArticle struct {
	Title          string
	Slug           string
	Summary        string
	ContentSnippet string
	ImageURL       string
	ArticleURL     string
	OriginalURL    string
	SourceName     string
	SourceURL      string
	Category       string
	Tags           []string
	Language       string
	PublishedAt    time.Time
	ContentHash    string
	Status         ArticleStatus
}

// IngestionStatus enumerates the lifecycle of one source's ingestion run.
type IngestionStatus string

const (
	IngestionInProgress IngestionStatus = "in_progress"
	IngestionSuccess    IngestionStatus = "success"
	IngestionError      IngestionStatus = "error"
)

// IngestionLog is one append-only audit record per source run. Created
// in_progress, finished exactly once with a terminal status.
type IngestionLog struct {
	ID                string
	SourceID          string
	SourceName        string
	Status            IngestionStatus
	ArticlesFetched   int
	ArticlesProcessed int
	ArticlesDuplicate int
	ErrorMessage      string
	StartedAt         time.Time
	CompletedAt       *time.Time
}

// IngestionResult is the per-source outcome returned to callers.
type IngestionResult struct {
	Success           bool
	SourceID          string
	SourceName        string
	ArticlesFetched   int
	ArticlesProcessed int
	ArticlesDuplicate int
	ArticlesStored    int
	Errors            []string
	LogID             string
}

// RunSummary aggregates a multi-source run.
type RunSummary struct {
	Sources    int
	Succeeded  int
	Failed     int
	Fetched    int
	Stored     int
	Duplicates int
}
