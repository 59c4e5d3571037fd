package app

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
	"github.com/nhle/notification-center/internal/ui/history"
)

const (
	// pruneEvery is how many records are written between prunes.
	pruneEvery = 50

	historyLimit = 200
	storeTimeout = 5 * time.Second
)

// journal writes sync records to the store off the update loop. A nil
// store turns every method into a no-op.
type journal struct {
	store   store.Store
	log     zerolog.Logger
	keep    atomic.Int64
	written atomic.Int64
}

func newJournal(s store.Store, keep int, log zerolog.Logger) *journal {
	j := &journal{store: s, log: log}
	j.setKeep(keep)
	return j
}

func (j *journal) setKeep(keep int) {
	j.keep.Store(int64(keep))
}

// record returns a command persisting rec. It produces no message.
func (j *journal) record(rec model.SyncRecord) tea.Cmd {
	if j.store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := j.store.RecordSync(ctx, rec); err != nil {
			j.log.Warn().Err(err).Str("op", rec.Op).Msg("failed to record sync")
			return nil
		}

		keep := int(j.keep.Load())
		if keep > 0 && j.written.Add(1)%pruneEvery == 0 {
			removed, err := j.store.PruneSyncs(ctx, keep)
			if err != nil {
				j.log.Warn().Err(err).Msg("failed to prune sync history")
			} else if removed > 0 {
				j.log.Debug().Int64("removed", removed).Msg("pruned sync history")
			}
		}
		return nil
	}
}

// load returns a command reading the latest records for the history view.
func (j *journal) load() tea.Cmd {
	s := j.store
	return func() tea.Msg {
		if s == nil {
			return history.LoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		records, err := s.RecentSyncs(ctx, store.SyncFilter{Limit: historyLimit})
		if err != nil {
			return history.LoadedMsg{Err: err}
		}
		summary, err := s.SyncSummary(ctx)
		return history.LoadedMsg{Records: records, Summary: summary, Err: err}
	}
}
