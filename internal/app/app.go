package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsingest/internal/config"
	"newsingest/internal/content"
	"newsingest/internal/infrastructure/feed"
	"newsingest/internal/infrastructure/storage"
	"newsingest/internal/logging"
	"newsingest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
// It owns the single scheduler instance; nothing here is package-level
// state.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pool      interface{ Close() }
	ingestor  *usecase.Ingestor
	scheduler *usecase.Scheduler
}

// New connects to Postgres and assembles the ingestion pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	pool, err := storage.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	fetcher := feed.NewFetcher(nil, feed.FetcherOptions{
		Timeout:   time.Duration(cfg.Ingestion.FetchTimeoutSeconds) * time.Second,
		UserAgent: cfg.Ingestion.UserAgent,
		Attempts:  cfg.Ingestion.FetchAttempts,
		BaseDelay: time.Duration(cfg.Ingestion.FetchBackoffSeconds) * time.Second,
	}, baseLogger.With("component", "fetcher"))

	parser := feed.NewParser(baseLogger.With("component", "parser"))

	normalizer := content.NewNormalizer(content.NormalizerOptions{
		DefaultCategory: cfg.Ingestion.DefaultCategory,
		DefaultLanguage: cfg.Ingestion.DefaultLanguage,
	}, baseLogger.With("component", "normalizer"))

	ingestor := usecase.NewIngestor(usecase.IngestorDeps{
		Fetcher:     fetcher,
		Parser:      parser,
		Normalizer:  normalizer,
		Articles:    storage.NewArticleRepository(pool),
		Sources:     storage.NewSourceRepository(pool),
		Logs:        usecase.NewLogRecorder(storage.NewIngestionLogRepository(pool, nil)),
		Logger:      baseLogger.With("component", "ingestor"),
		SourceDelay: time.Duration(cfg.Ingestion.SourceDelaySeconds) * time.Second,
	})

	scheduler := usecase.NewScheduler(ingestor, usecase.SchedulerOptions{
		IntervalMinutes:   cfg.Scheduler.IntervalMinutes,
		RetryLimit:        cfg.Scheduler.RetryLimit,
		RetryDelayMinutes: cfg.Scheduler.RetryDelayMinutes,
	}, baseLogger.With("component", "scheduler"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pool:      pool,
		ingestor:  ingestor,
		scheduler: scheduler,
	}, nil
}

// Ingestor exposes the pipeline to embedding hosts (admin handlers etc.).
func (a *Application) Ingestor() *usecase.Ingestor {
	return a.ingestor
}

// Scheduler exposes the owned scheduler instance.
func (a *Application) Scheduler() *usecase.Scheduler {
	return a.scheduler
}

// Run starts the scheduler and blocks until the context is cancelled,
// then stops it and releases the pool. An in-flight run finishes on its
// own before the process exits.
func (a *Application) Run(ctx context.Context) error {
	a.scheduler.Start()
	<-ctx.Done()

	a.scheduler.Stop()
	a.pool.Close()
	a.logger.Info("application shut down")
	return nil
}
