package ports

import (
	"context"

	"newsingest/internal/domain"
)

// FeedFetcher retrieves raw feed text from an upstream URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) (string, error)
}

// FeedParser turns raw feed text into uniform raw items or feed metadata.
type FeedParser interface {
	Parse(raw string) ([]domain.RawItem, error)
	ParseInfo(raw string) (domain.FeedInfo, error)
}

// SourceProvider reads configured feed sources from storage.
type SourceProvider interface {
	ActiveSources(ctx context.Context) ([]domain.Source, error)
	AllSources(ctx context.Context) ([]domain.Source, error)
	SourceByID(ctx context.Context, id string) (*domain.Source, error)
}

// ArticleStore persists canonical articles with conflict-ignore semantics
// and answers content-hash membership queries for cross-run dedup.
type ArticleStore interface {
	SaveArticles(ctx context.Context, articles []domain.CanonicalArticle) (int, error)
	ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error)
}

// IngestionLogStore writes the append-only audit trail of ingestion runs.
type IngestionLogStore interface {
	Start(ctx context.Context, entry domain.IngestionLog) (string, error)
	Finish(ctx context.Context, id string, outcome domain.IngestionLog) error
	Recent(ctx context.Context, limit int) ([]domain.IngestionLog, error)
}
