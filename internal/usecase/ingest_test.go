package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"newsingest/internal/content"
	"newsingest/internal/domain"
)

type fakeFetcher struct {
	body  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedURL string) (string, error) {
	f.calls++
	return f.body, f.err
}

type fakeParser struct {
	items []domain.RawItem
	err   error
}

func (f *fakeParser) Parse(raw string) ([]domain.RawItem, error) {
	return f.items, f.err
}

func (f *fakeParser) ParseInfo(raw string) (domain.FeedInfo, error) {
	return domain.FeedInfo{}, f.err
}

type fakeArticleStore struct {
	existing map[string]bool
	saved    [][]domain.CanonicalArticle
	saveErr  error
	hashErr  error
}

func (f *fakeArticleStore) SaveArticles(ctx context.Context, articles []domain.CanonicalArticle) (int, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, articles)
	return len(articles), nil
}

func (f *fakeArticleStore) ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	if f.hashErr != nil {
		return nil, f.hashErr
	}
	found := map[string]bool{}
	for _, hash := range hashes {
		if f.existing[hash] {
			found[hash] = true
		}
	}
	return found, nil
}

type fakeSourceProvider struct {
	sources []domain.Source
	err     error
}

func (f *fakeSourceProvider) ActiveSources(ctx context.Context) ([]domain.Source, error) {
	if f.err != nil {
		return nil, f.err
	}
	active := []domain.Source{}
	for _, s := range f.sources {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active, nil
}

func (f *fakeSourceProvider) AllSources(ctx context.Context) ([]domain.Source, error) {
	return f.sources, f.err
}

func (f *fakeSourceProvider) SourceByID(ctx context.Context, id string) (*domain.Source, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.sources {
		if s.ID == id {
			copied := s
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeLogStore struct {
	started  []domain.IngestionLog
	finished map[string]domain.IngestionLog
	startErr error
}

func (f *fakeLogStore) Start(ctx context.Context, entry domain.IngestionLog) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	f.started = append(f.started, entry)
	return "log-1", nil
}

func (f *fakeLogStore) Finish(ctx context.Context, id string, outcome domain.IngestionLog) error {
	if f.finished == nil {
		f.finished = map[string]domain.IngestionLog{}
	}
	f.finished[id] = outcome
	return nil
}

func (f *fakeLogStore) Recent(ctx context.Context, limit int) ([]domain.IngestionLog, error) {
	return f.started, nil
}

var activeSource = domain.Source{
	ID:       "src-1",
	Name:     "Daily Sun",
	FeedURL:  "https://dailysun.example/rss",
	SiteURL:  "https://dailysun.example",
	IsActive: true,
}

func validItems() []domain.RawItem {
	published := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	return []domain.RawItem{
		{
			Title:       "Senate Passes New Budget Bill",
			Description: "The senate passed the national budget bill today.",
			Link:        "https://dailysun.example/a",
			PublishedAt: &published,
		},
		{
			Title:       "Fuel Prices Climb Once More",
			Description: "Fuel prices climbed again across the country.",
			Link:        "https://dailysun.example/b",
			PublishedAt: &published,
		},
	}
}

func newTestIngestor(fetcher *fakeFetcher, parser *fakeParser, store *fakeArticleStore, sources *fakeSourceProvider, logs *fakeLogStore) *Ingestor {
	return NewIngestor(IngestorDeps{
		Fetcher:     fetcher,
		Parser:      parser,
		Normalizer:  content.NewNormalizer(content.NormalizerOptions{}, nil),
		Articles:    store,
		Sources:     sources,
		Logs:        NewLogRecorder(logs),
		SourceDelay: time.Millisecond,
	})
}

func TestIngestFromSourceSuccess(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: "<rss/>"}
	parser := &fakeParser{items: validItems()}
	store := &fakeArticleStore{}
	logs := &fakeLogStore{}

	ing := newTestIngestor(fetcher, parser, store, &fakeSourceProvider{}, logs)
	result := ing.IngestFromSource(context.Background(), activeSource)

	if !result.Success {
		t.Fatalf("expected success, errors: %v", result.Errors)
	}
	if result.ArticlesFetched != 2 || result.ArticlesProcessed != 2 || result.ArticlesStored != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.ArticlesDuplicate != 0 {
		t.Fatalf("unexpected duplicates: %d", result.ArticlesDuplicate)
	}

	outcome, ok := logs.finished["log-1"]
	if !ok {
		t.Fatal("log entry was not finished")
	}
	if outcome.Status != domain.IngestionSuccess {
		t.Fatalf("unexpected log status: %q", outcome.Status)
	}
	if outcome.ArticlesFetched != 2 {
		t.Fatalf("unexpected log fetched count: %d", outcome.ArticlesFetched)
	}
}

func TestIngestFromSourceInvalidURL(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: "<rss/>"}
	logs := &fakeLogStore{}
	ing := newTestIngestor(fetcher, &fakeParser{}, &fakeArticleStore{}, &fakeSourceProvider{}, logs)

	source := activeSource
	source.FeedURL = "ftp://bad.example/feed"

	result := ing.IngestFromSource(context.Background(), source)
	if result.Success {
		t.Fatal("expected failure for invalid URL")
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetcher must not be called for invalid URL, got %d calls", fetcher.calls)
	}
	if outcome := logs.finished["log-1"]; outcome.Status != domain.IngestionError {
		t.Fatalf("unexpected log status: %q", outcome.Status)
	}
}

func TestIngestFromSourceEmptyFeed(t *testing.T) {
	t.Parallel()

	ing := newTestIngestor(&fakeFetcher{body: "<rss/>"}, &fakeParser{}, &fakeArticleStore{}, &fakeSourceProvider{}, &fakeLogStore{})

	result := ing.IngestFromSource(context.Background(), activeSource)
	if result.Success {
		t.Fatal("empty feed must be a failure, not success-with-zero")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "empty feed") {
		t.Fatalf("expected empty feed error, got %v", result.Errors)
	}
}

func TestIngestFromSourceFetchError(t *testing.T) {
	t.Parallel()

	logs := &fakeLogStore{}
	ing := newTestIngestor(&fakeFetcher{err: errors.New("connection refused")}, &fakeParser{}, &fakeArticleStore{}, &fakeSourceProvider{}, logs)

	result := ing.IngestFromSource(context.Background(), activeSource)
	if result.Success {
		t.Fatal("expected failure on fetch error")
	}
	if outcome := logs.finished["log-1"]; outcome.ErrorMessage == "" {
		t.Fatal("log entry should carry the error message")
	}
}

func TestIngestCrossRunDedup(t *testing.T) {
	t.Parallel()

	items := validItems()
	hash := content.Hash(content.CleanURL(items[0].Link), content.CleanText(items[0].Title))

	store := &fakeArticleStore{existing: map[string]bool{hash: true}}
	ing := newTestIngestor(&fakeFetcher{body: "<rss/>"}, &fakeParser{items: items}, store, &fakeSourceProvider{}, &fakeLogStore{})

	result := ing.IngestFromSource(context.Background(), activeSource)
	if !result.Success {
		t.Fatalf("expected success, errors: %v", result.Errors)
	}
	if result.ArticlesDuplicate != 1 {
		t.Fatalf("expected 1 duplicate, got %d", result.ArticlesDuplicate)
	}
	if result.ArticlesStored != 1 {
		t.Fatalf("expected 1 stored, got %d", result.ArticlesStored)
	}
	if len(store.saved) != 1 || len(store.saved[0]) != 1 {
		t.Fatalf("unexpected saved batches: %v", store.saved)
	}
}

func TestIngestInBatchDedup(t *testing.T) {
	t.Parallel()

	items := validItems()
	items = append(items, items[0])

	ing := newTestIngestor(&fakeFetcher{body: "<rss/>"}, &fakeParser{items: items}, &fakeArticleStore{}, &fakeSourceProvider{}, &fakeLogStore{})

	result := ing.IngestFromSource(context.Background(), activeSource)
	if result.ArticlesFetched != 3 {
		t.Fatalf("expected 3 fetched, got %d", result.ArticlesFetched)
	}
	if result.ArticlesDuplicate != 1 {
		t.Fatalf("expected 1 in-batch duplicate, got %d", result.ArticlesDuplicate)
	}
	if result.ArticlesProcessed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.ArticlesProcessed)
	}
}

func TestIngestFromMultipleSourcesSkipsInactive(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: "<rss/>"}
	logs := &fakeLogStore{}
	ing := newTestIngestor(fetcher, &fakeParser{items: validItems()}, &fakeArticleStore{}, &fakeSourceProvider{}, logs)

	inactive := activeSource
	inactive.ID = "src-2"
	inactive.Name = "Sleeping Source"
	inactive.IsActive = false

	results := ing.IngestFromMultipleSources(context.Background(), []domain.Source{activeSource, inactive})

	if len(results) != 1 {
		t.Fatalf("expected exactly 1 result, got %d", len(results))
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 ingest invocation, got %d", fetcher.calls)
	}
	// Skipped sources never get a log entry.
	if len(logs.started) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs.started))
	}
}

func TestIngestFromAllSources(t *testing.T) {
	t.Parallel()

	sources := &fakeSourceProvider{sources: []domain.Source{activeSource}}
	ing := newTestIngestor(&fakeFetcher{body: "<rss/>"}, &fakeParser{items: validItems()}, &fakeArticleStore{}, sources, &fakeLogStore{})

	results, err := ing.IngestFromAllSources(context.Background())
	if err != nil {
		t.Fatalf("IngestFromAllSources returned error: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestTriggerManualIngestionNotFound(t *testing.T) {
	t.Parallel()

	logs := &fakeLogStore{}
	ing := newTestIngestor(&fakeFetcher{}, &fakeParser{}, &fakeArticleStore{}, &fakeSourceProvider{}, logs)

	result := ing.TriggerManualIngestion(context.Background(), "missing")
	if result.Success {
		t.Fatal("expected failure for unknown source")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Source not found" {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(logs.started) != 0 {
		t.Fatal("no log entry should be created for an unknown source")
	}
}

func TestTriggerManualIngestionFound(t *testing.T) {
	t.Parallel()

	sources := &fakeSourceProvider{sources: []domain.Source{activeSource}}
	ing := newTestIngestor(&fakeFetcher{body: "<rss/>"}, &fakeParser{items: validItems()}, &fakeArticleStore{}, sources, &fakeLogStore{})

	result := ing.TriggerManualIngestion(context.Background(), "src-1")
	if !result.Success {
		t.Fatalf("expected success, errors: %v", result.Errors)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	results := []domain.IngestionResult{
		{Success: true, ArticlesFetched: 10, ArticlesStored: 7, ArticlesDuplicate: 3},
		{Success: false, ArticlesFetched: 4},
	}

	summary := Summarize(results)
	if summary.Sources != 2 || summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Fetched != 14 || summary.Stored != 7 || summary.Duplicates != 3 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
}
