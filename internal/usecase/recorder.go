package usecase

import (
	"context"
	"log"

	"newsingest/internal/domain"
	"newsingest/internal/ports"
	"newsingest/pkg/logger"
)

// LogRecorder writes the ingestion audit trail. Every write failure is
// swallowed and printed to stderr: a logging failure must never abort an
// ingestion run.
type LogRecorder struct {
	store  ports.IngestionLogStore
	errlog *log.Logger
}

// NewLogRecorder wraps an IngestionLogStore.
func NewLogRecorder(store ports.IngestionLogStore) *LogRecorder {
	return &LogRecorder{
		store:  store,
		errlog: logger.New("ingestion-log"),
	}
}

// Start creates an in_progress entry for the source and returns its id.
// On failure it returns an empty id and the run proceeds unlogged.
func (r *LogRecorder) Start(ctx context.Context, source domain.Source) string {
	if r == nil || r.store == nil {
		return ""
	}

	id, err := r.store.Start(ctx, domain.IngestionLog{
		SourceID:   source.ID,
		SourceName: source.Name,
		Status:     domain.IngestionInProgress,
	})
	if err != nil {
		r.errlog.Printf("start entry for %s: %v", source.Name, err)
		return ""
	}
	return id
}

// Finish sets the terminal status and counts on an entry. A zero id (a
// failed Start) makes this a no-op.
func (r *LogRecorder) Finish(ctx context.Context, id string, outcome domain.IngestionLog) {
	if r == nil || r.store == nil || id == "" {
		return
	}

	if err := r.store.Finish(ctx, id, outcome); err != nil {
		r.errlog.Printf("finish entry %s: %v", id, err)
	}
}

// Recent lists the newest entries. Read failures are not swallowed; the
// caller asked for data and should see the error.
func (r *LogRecorder) Recent(ctx context.Context, limit int) ([]domain.IngestionLog, error) {
	if r == nil || r.store == nil {
		return nil, nil
	}
	return r.store.Recent(ctx, limit)
}
