package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsingest/internal/domain"
)

// AllSourcesIngestor is the slice of the Ingestor the scheduler drives.
type AllSourcesIngestor interface {
	IngestFromAllSources(ctx context.Context) ([]domain.IngestionResult, error)
}

// SchedulerOptions configure interval and retry behavior at construction.
// Zero values fall back to the defaults (15m interval, 3 retries, 5m
// retry delay). Callbacks default to slog logging.
type SchedulerOptions struct {
	IntervalMinutes   int
	RetryLimit        int
	RetryDelayMinutes int
	OnSuccess         func([]domain.IngestionResult)
	OnError           func(error)
}

// SchedulerUpdate is a partial reconfiguration; nil fields keep their
// current value.
type SchedulerUpdate struct {
	IntervalMinutes   *int
	RetryLimit        *int
	RetryDelayMinutes *int
}

// SchedulerStatus is the externally visible scheduler state.
type SchedulerStatus struct {
	IsRunning       bool
	IntervalMinutes int
}

// Scheduler fires "ingest from all sources" immediately on start and then
// on a fixed interval. A firing with any unsuccessful result is retried
// wholesale after the retry delay until the retry budget is exhausted.
// The scheduler is an explicitly owned object: construct one, hand it to
// the host lifecycle, no package-level instance.
type Scheduler struct {
	mu       sync.Mutex
	ingestor AllSourcesIngestor

	interval   time.Duration
	retryLimit int
	retryDelay time.Duration

	running bool
	stop    chan struct{}

	// runMu guards against a manual trigger overlapping a scheduled
	// firing; the losing run is skipped, never queued.
	runMu sync.Mutex

	onSuccess func([]domain.IngestionResult)
	onError   func(error)
	logger    *slog.Logger
}

// NewScheduler builds a stopped scheduler around an ingestor.
func NewScheduler(ingestor AllSourcesIngestor, opts SchedulerOptions, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if opts.IntervalMinutes <= 0 {
		opts.IntervalMinutes = 15
	}
	if opts.RetryLimit <= 0 {
		opts.RetryLimit = 3
	}
	if opts.RetryDelayMinutes <= 0 {
		opts.RetryDelayMinutes = 5
	}

	s := &Scheduler{
		ingestor:   ingestor,
		interval:   time.Duration(opts.IntervalMinutes) * time.Minute,
		retryLimit: opts.RetryLimit,
		retryDelay: time.Duration(opts.RetryDelayMinutes) * time.Minute,
		onSuccess:  opts.OnSuccess,
		onError:    opts.OnError,
		logger:     log,
	}
	if s.onSuccess == nil {
		s.onSuccess = func(results []domain.IngestionResult) {
			summary := Summarize(results)
			log.Info("scheduled ingestion succeeded",
				"sources", summary.Sources, "stored", summary.Stored, "duplicates", summary.Duplicates)
		}
	}
	if s.onError == nil {
		s.onError = func(err error) {
			log.Error("scheduled ingestion failed", "error", err)
		}
	}
	return s
}

// Start moves the scheduler to running and fires an immediate run.
// Starting a running scheduler is a warning no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

// Stop clears the pending timer. An in-flight run completes to its
// natural end. Stopping a stopped scheduler is a warning no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Status reports whether the scheduler is running and its interval.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{
		IsRunning:       s.running,
		IntervalMinutes: int(s.interval / time.Minute),
	}
}

// UpdateConfig applies a partial reconfiguration. A running scheduler is
// restarted with the new values; "is running" is preserved across the
// change.
func (s *Scheduler) UpdateConfig(update SchedulerUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasRunning := s.running
	if wasRunning {
		s.stopLocked()
	}

	if update.IntervalMinutes != nil && *update.IntervalMinutes > 0 {
		s.interval = time.Duration(*update.IntervalMinutes) * time.Minute
	}
	if update.RetryLimit != nil && *update.RetryLimit >= 0 {
		s.retryLimit = *update.RetryLimit
	}
	if update.RetryDelayMinutes != nil && *update.RetryDelayMinutes > 0 {
		s.retryDelay = time.Duration(*update.RetryDelayMinutes) * time.Minute
	}

	if wasRunning {
		s.startLocked()
	}
}

// TriggerManual runs the ingestion once, outside the schedule, without
// touching the timer. It refuses to overlap a run already in progress.
func (s *Scheduler) TriggerManual(ctx context.Context) ([]domain.IngestionResult, error) {
	if !s.runMu.TryLock() {
		return nil, fmt.Errorf("ingestion run already in progress")
	}
	defer s.runMu.Unlock()

	s.logger.Info("manual ingestion triggered")
	return s.ingestor.IngestFromAllSources(ctx)
}

func (s *Scheduler) startLocked() {
	if s.running {
		s.logger.Warn("scheduler already running")
		return
	}

	s.running = true
	s.stop = make(chan struct{})
	s.logger.Info("scheduler started", "interval", s.interval)

	go s.loop(s.stop, s.interval, s.retryLimit, s.retryDelay)
}

func (s *Scheduler) stopLocked() {
	if !s.running {
		s.logger.Warn("scheduler already stopped")
		return
	}

	close(s.stop)
	s.stop = nil
	s.running = false
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(stop chan struct{}, interval time.Duration, retryLimit int, retryDelay time.Duration) {
	retries := 0
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			ok := s.runScheduled()

			switch {
			case ok:
				retries = 0
				timer.Reset(interval)
			case retries < retryLimit:
				retries++
				s.logger.Warn("ingestion run failed, retrying whole run",
					"retry", retries, "limit", retryLimit, "delay", retryDelay)
				timer.Reset(retryDelay)
			default:
				s.logger.Error("ingestion retry budget exhausted", "retries", retries)
				retries = 0
				timer.Reset(interval)
			}
		}
	}
}

// runScheduled executes one firing. A firing that cannot take the run
// guard is skipped (not retried): another run is already doing the work.
func (s *Scheduler) runScheduled() bool {
	if !s.runMu.TryLock() {
		s.logger.Warn("ingestion run already in progress, skipping scheduled firing")
		return true
	}
	defer s.runMu.Unlock()

	results, err := s.ingestor.IngestFromAllSources(context.Background())
	if err != nil {
		s.onError(err)
		return false
	}

	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	if failed > 0 {
		s.onError(fmt.Errorf("%d of %d sources failed", failed, len(results)))
		return false
	}

	s.onSuccess(results)
	return true
}
