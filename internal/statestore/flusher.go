package statestore

import (
	"context"
	"time"

	"github.com/dreamware/orcd/internal/metrics"
	"github.com/dreamware/orcd/internal/obslog"
)

// Flusher periodically snapshots a DesiredStateTable to a Store. It is the
// only writer of the state file; the table itself never touches disk.
type Flusher struct {
	table    *DesiredStateTable
	store    *Store
	interval time.Duration
}

// NewFlusher returns a Flusher that snapshots table into store every
// interval once Run is called.
func NewFlusher(table *DesiredStateTable, store *Store, interval time.Duration) *Flusher {
	return &Flusher{table: table, store: store, interval: interval}
}

// Run blocks, flushing on a ticker until ctx is canceled. Save errors are
// logged and swallowed: a single failed flush should not crash the
// scheduler, since the in-memory table remains authoritative and the next
// tick will try again.
func (f *Flusher) Run(ctx context.Context) {
	log := obslog.WithComponent("persistence_flusher")
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("persistence flusher stopping")
			return
		case <-ticker.C:
			entries := f.table.SnapshotForPersistence()
			if err := f.store.Save(entries); err != nil {
				metrics.PersistenceFlushesTotal.WithLabelValues("error").Inc()
				log.Error().Err(err).Msg("failed to flush desired-state snapshot")
				continue
			}
			metrics.PersistenceFlushesTotal.WithLabelValues("ok").Inc()
			log.Debug().Int("entries", len(entries)).Msg("flushed desired-state snapshot")
		}
	}
}
