package store

import (
	"context"

	"github.com/nhle/notification-center/internal/model"
)

// SyncFilter narrows sync history queries.
type SyncFilter struct {
	Kind       *model.SyncKind
	FailedOnly bool
	Limit      int
}

// Store defines the persistence interface for the local sync history.
// Notifications themselves are never stored; the server is the only
// source of truth for them.
type Store interface {
	RecordSync(ctx context.Context, rec model.SyncRecord) error
	RecentSyncs(ctx context.Context, filter SyncFilter) ([]model.SyncRecord, error)
	SyncSummary(ctx context.Context) (Summary, error)
	PruneSyncs(ctx context.Context, keep int) (int64, error)
	Close() error
}

// Summary aggregates the journal for the history view header.
type Summary struct {
	Total         int   `db:"total"`
	Failed        int   `db:"failed"`
	NewItems      int   `db:"new_items"`
	AvgDurationMs int64 `db:"avg_duration_ms"`
}
