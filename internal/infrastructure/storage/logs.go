package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"newsingest/internal/domain"
	"newsingest/internal/ports"
)

// IngestionLogRepository writes the append-only ingestion audit trail.
// Each entry is created in_progress and updated exactly once to its
// terminal status.
type IngestionLogRepository struct {
	db    Querier
	clock func() time.Time
}

var _ ports.IngestionLogStore = (*IngestionLogRepository)(nil)

// NewIngestionLogRepository wires a pgx querier; nil clock means time.Now.
func NewIngestionLogRepository(db Querier, clock func() time.Time) *IngestionLogRepository {
	if clock == nil {
		clock = time.Now
	}
	return &IngestionLogRepository{db: db, clock: clock}
}

// Start inserts an in_progress entry and returns its generated id.
func (r *IngestionLogRepository) Start(ctx context.Context, entry domain.IngestionLog) (string, error) {
	id := uuid.NewString()

	query, args, err := psql.Insert("ingestion_logs").
		Columns("id", "source_id", "source_name", "status", "started_at").
		Values(id, nullable(entry.SourceID), entry.SourceName, string(domain.IngestionInProgress), r.clock().UTC()).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert log entry: %w", err)
	}

	return id, nil
}

// Finish sets the terminal status, counts and completion timestamp.
func (r *IngestionLogRepository) Finish(ctx context.Context, id string, outcome domain.IngestionLog) error {
	query, args, err := psql.Update("ingestion_logs").
		Set("status", string(outcome.Status)).
		Set("articles_fetched", outcome.ArticlesFetched).
		Set("articles_processed", outcome.ArticlesProcessed).
		Set("articles_duplicates", outcome.ArticlesDuplicate).
		Set("error_message", nullable(outcome.ErrorMessage)).
		Set("completed_at", r.clock().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update log entry: %w", err)
	}

	return nil
}

// Recent lists the newest entries, most recent first.
func (r *IngestionLogRepository) Recent(ctx context.Context, limit int) ([]domain.IngestionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := psql.Select(
		"id", "source_id", "source_name", "status",
		"articles_fetched", "articles_processed", "articles_duplicates",
		"error_message", "started_at", "completed_at",
	).
		From("ingestion_logs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.IngestionLog
	for rows.Next() {
		var (
			entry      domain.IngestionLog
			sourceID   *string
			errMessage *string
			status     string
		)
		if err := rows.Scan(
			&entry.ID, &sourceID, &entry.SourceName, &status,
			&entry.ArticlesFetched, &entry.ArticlesProcessed, &entry.ArticlesDuplicate,
			&errMessage, &entry.StartedAt, &entry.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entry.Status = domain.IngestionStatus(status)
		if sourceID != nil {
			entry.SourceID = *sourceID
		}
		if errMessage != nil {
			entry.ErrorMessage = *errMessage
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return entries, nil
}

// nullable maps empty strings to NULL so optional columns stay NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
