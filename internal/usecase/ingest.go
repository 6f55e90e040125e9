package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsingest/internal/content"
	"newsingest/internal/domain"
	"newsingest/internal/ports"
)

// ErrSourceNotFound is returned inside the manual-trigger result when the
// requested source id does not exist.
var ErrSourceNotFound = errors.New("Source not found")

// IngestorDeps wires all driven adapters into the orchestration pipeline.
type IngestorDeps struct {
	Fetcher     ports.FeedFetcher
	Parser      ports.FeedParser
	Normalizer  *content.Normalizer
	Articles    ports.ArticleStore
	Sources     ports.SourceProvider
	Logs        *LogRecorder
	Logger      *slog.Logger
	SourceDelay time.Duration
}

// Ingestor sequences fetch, parse, normalize, dedup and store per source
// and aggregates results across sources. Errors are caught per source;
// one bad feed never aborts a multi-source run.
type Ingestor struct {
	fetcher     ports.FeedFetcher
	parser      ports.FeedParser
	normalizer  *content.Normalizer
	articles    ports.ArticleStore
	sources     ports.SourceProvider
	logs        *LogRecorder
	logger      *slog.Logger
	sourceDelay time.Duration
}

// NewIngestor constructs the orchestration component. The inter-source
// delay defaults to two seconds; third-party servers are hit one at a
// time, deliberately never in parallel bursts.
func NewIngestor(deps IngestorDeps) *Ingestor {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SourceDelay <= 0 {
		deps.SourceDelay = 2 * time.Second
	}
	return &Ingestor{
		fetcher:     deps.Fetcher,
		parser:      deps.Parser,
		normalizer:  deps.Normalizer,
		articles:    deps.Articles,
		sources:     deps.Sources,
		logs:        deps.Logs,
		logger:      deps.Logger,
		sourceDelay: deps.SourceDelay,
	}
}

// IngestFromSource runs the full pipeline for one source. The ingestion
// log entry is opened before any work and finished exactly once with the
// terminal status; counts reflect whatever was measured before a failure.
func (i *Ingestor) IngestFromSource(ctx context.Context, source domain.Source) domain.IngestionResult {
	result := domain.IngestionResult{
		SourceID:   source.ID,
		SourceName: source.Name,
	}
	result.LogID = i.logs.Start(ctx, source)

	i.logger.Info("ingestion started", "source", source.Name, "url", source.FeedURL)

	fail := func(err error) domain.IngestionResult {
		result.Errors = append(result.Errors, err.Error())
		i.logger.Error("ingestion failed", "source", source.Name, "error", err)
		i.logs.Finish(ctx, result.LogID, i.outcome(result, domain.IngestionError, err.Error()))
		return result
	}

	if err := domain.ValidateFeedURL(source.FeedURL); err != nil {
		return fail(err)
	}

	raw, err := i.fetcher.Fetch(ctx, source.FeedURL)
	if err != nil {
		return fail(err)
	}

	items, err := i.parser.Parse(raw)
	if err != nil {
		return fail(err)
	}
	result.ArticlesFetched = len(items)
	if len(items) == 0 {
		return fail(fmt.Errorf("empty feed: %s produced no items", source.FeedURL))
	}

	items, removed := DedupRawItems(items)
	result.ArticlesDuplicate += removed

	articles := i.normalizer.NormalizeAll(items, source)
	result.ArticlesProcessed = len(articles)

	fresh, dropped, err := i.dropKnownHashes(ctx, articles)
	if err != nil {
		return fail(err)
	}
	result.ArticlesDuplicate += dropped

	stored, err := i.articles.SaveArticles(ctx, fresh)
	if err != nil {
		return fail(err)
	}
	// Upper bound: the conflict-ignoring upsert does not report exact
	// insert counts.
	result.ArticlesStored = stored

	result.Success = true
	i.logs.Finish(ctx, result.LogID, i.outcome(result, domain.IngestionSuccess, ""))
	i.logger.Info("ingestion finished",
		"source", source.Name,
		"fetched", result.ArticlesFetched,
		"processed", result.ArticlesProcessed,
		"duplicates", result.ArticlesDuplicate,
		"stored", result.ArticlesStored)

	return result
}

// IngestFromMultipleSources runs active sources sequentially with a fixed
// delay in between. Inactive sources are skipped without a log entry.
func (i *Ingestor) IngestFromMultipleSources(ctx context.Context, sources []domain.Source) []domain.IngestionResult {
	results := make([]domain.IngestionResult, 0, len(sources))

	first := true
	for _, source := range sources {
		if !source.IsActive {
			i.logger.Debug("skipping inactive source", "source", source.Name)
			continue
		}

		if !first {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(i.sourceDelay):
			}
		}
		first = false

		results = append(results, i.IngestFromSource(ctx, source))
	}

	return results
}

// IngestFromAllSources loads every active source and runs them all.
func (i *Ingestor) IngestFromAllSources(ctx context.Context) ([]domain.IngestionResult, error) {
	sources, err := i.sources.ActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active sources: %w", err)
	}
	return i.IngestFromMultipleSources(ctx, sources), nil
}

// TriggerManualIngestion runs one source by id. An unknown id yields a
// failed result without a log entry; there is no source to log against.
func (i *Ingestor) TriggerManualIngestion(ctx context.Context, sourceID string) domain.IngestionResult {
	source, err := i.sources.SourceByID(ctx, sourceID)
	if err != nil {
		return domain.IngestionResult{
			SourceID: sourceID,
			Errors:   []string{fmt.Sprintf("load source: %v", err)},
		}
	}
	if source == nil {
		return domain.IngestionResult{
			SourceID: sourceID,
			Errors:   []string{ErrSourceNotFound.Error()},
		}
	}

	return i.IngestFromSource(ctx, *source)
}

// RecentLogs lists the newest ingestion log entries.
func (i *Ingestor) RecentLogs(ctx context.Context, limit int) ([]domain.IngestionLog, error) {
	return i.logs.Recent(ctx, limit)
}

// Summarize aggregates a multi-source result list.
func Summarize(results []domain.IngestionResult) domain.RunSummary {
	summary := domain.RunSummary{Sources: len(results)}
	for _, result := range results {
		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Fetched += result.ArticlesFetched
		summary.Stored += result.ArticlesStored
		summary.Duplicates += result.ArticlesDuplicate
	}
	return summary
}

func (i *Ingestor) dropKnownHashes(ctx context.Context, articles []domain.CanonicalArticle) ([]domain.CanonicalArticle, int, error) {
	if len(articles) == 0 {
		return articles, 0, nil
	}

	hashes := make([]string, len(articles))
	for idx, article := range articles {
		hashes[idx] = article.ContentHash
	}

	existing, err := i.articles.ExistingHashes(ctx, hashes)
	if err != nil {
		return nil, 0, fmt.Errorf("check existing hashes: %w", err)
	}

	fresh := make([]domain.CanonicalArticle, 0, len(articles))
	for _, article := range articles {
		if existing[article.ContentHash] {
			continue
		}
		fresh = append(fresh, article)
	}

	return fresh, len(articles) - len(fresh), nil
}

func (i *Ingestor) outcome(result domain.IngestionResult, status domain.IngestionStatus, message string) domain.IngestionLog {
	return domain.IngestionLog{
		Status:            status,
		ArticlesFetched:   result.ArticlesFetched,
		ArticlesProcessed: result.ArticlesProcessed,
		ArticlesDuplicate: result.ArticlesDuplicate,
		ErrorMessage:      message,
	}
}
