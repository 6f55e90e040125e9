package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"newsingest/internal/domain"
	"newsingest/internal/ports"
)

// ArticleRepository persists canonical articles into Postgres. Conflicts
// on original_url are ignored: first write wins, duplicates are skipped
// silently by the unique constraint.
type ArticleRepository struct {
	db Querier
}

var _ ports.ArticleStore = (*ArticleRepository)(nil)

// NewArticleRepository wires a pgx querier.
func NewArticleRepository(db Querier) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// SaveArticles inserts the batch with ON CONFLICT DO NOTHING and returns
// the attempted count. The exact number of new rows is not available from
// a conflict-ignoring insert; callers treat the count as an upper bound.
func (r *ArticleRepository) SaveArticles(ctx context.Context, articles []domain.CanonicalArticle) (int, error) {
	if r.db == nil || len(articles) == 0 {
		return 0, nil
	}

	builder := psql.Insert("articles").Columns(
		"title", "slug", "summary", "content_snippet", "image_url",
		"article_url", "original_url", "source_name", "source_url",
		"category", "tags", "language", "published_at", "content_hash",
		"status", "view_count", "is_featured",
	)
	for _, a := range articles {
		builder = builder.Values(
			a.Title, a.Slug, a.Summary, a.ContentSnippet, a.ImageURL,
			a.ArticleURL, a.OriginalURL, a.SourceName, a.SourceURL,
			a.Category, a.Tags, a.Language, a.PublishedAt, a.ContentHash,
			string(a.Status), 0, false,
		)
	}
	builder = builder.Suffix("ON CONFLICT (original_url) DO NOTHING")

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert articles: %w", err)
	}

	return len(articles), nil
}

// ExistingHashes returns which of the given content hashes are already
// persisted; the cross-run dedup membership check.
func (r *ArticleRepository) ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(hashes))
	if r.db == nil || len(hashes) == 0 {
		return existing, nil
	}

	query, args, err := psql.Select("content_hash").
		From("articles").
		Where(sq.Eq{"content_hash": hashes}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hashes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		existing[hash] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return existing, nil
}
