package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"newsingest/internal/domain"
	"newsingest/internal/ports"
)

// SourceRepository reads configured feed sources. The pipeline never
// creates or deletes sources; the admin surface owns them.
type SourceRepository struct {
	db Querier
}

var _ ports.SourceProvider = (*SourceRepository)(nil)

// NewSourceRepository wires a pgx querier.
func NewSourceRepository(db Querier) *SourceRepository {
	return &SourceRepository{db: db}
}

// ActiveSources lists sources with is_active=true.
func (r *SourceRepository) ActiveSources(ctx context.Context) ([]domain.Source, error) {
	return r.list(ctx, sq.Eq{"is_active": true})
}

// AllSources lists every source regardless of state.
func (r *SourceRepository) AllSources(ctx context.Context) ([]domain.Source, error) {
	return r.list(ctx, nil)
}

// SourceByID returns one source, or nil when the id is unknown.
func (r *SourceRepository) SourceByID(ctx context.Context, id string) (*domain.Source, error) {
	query, args, err := psql.Select("id", "name", "feed_url", "site_url", "is_active").
		From("sources").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var source domain.Source
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&source.ID, &source.Name, &source.FeedURL, &source.SiteURL, &source.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan source: %w", err)
	}

	return &source, nil
}

func (r *SourceRepository) list(ctx context.Context, where any) ([]domain.Source, error) {
	builder := psql.Select("id", "name", "feed_url", "site_url", "is_active").
		From("sources").
		OrderBy("name")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var source domain.Source
		if err := rows.Scan(&source.ID, &source.Name, &source.FeedURL, &source.SiteURL, &source.IsActive); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sources, nil
}
