// Package housekeeping drives the maintenance pass over a local store: a
// size-capped eviction sweep and a stats ledger snapshot, invoked both
// explicitly (the CLI's maintenance command) and periodically from a
// background goroutine in long-lived invocations.
package housekeeping

import (
	"github.com/buildcache/buildcache/pkg/logging"
	"github.com/buildcache/buildcache/pkg/store"
)

// Housekeep performs a single maintenance pass on s: it removes stale
// scratch-directory leftovers, reconciles the stats ledger against actual
// disk usage, and evicts entries if the store exceeds sizeCap. A sizeCap of
// zero disables eviction but not the other maintenance steps.
func Housekeep(s *store.Store, sizeCap uint64, logger *logging.Logger) {
	if err := s.CleanScratch(); err != nil {
		logger.Debug("scratch cleanup failed during housekeeping:", err)
	}

	// The ledger's incremental accounting drifts when entries disappear
	// behind the store's back, so resynchronize it from a full walk before
	// deciding whether eviction is needed.
	if totalBytes, entryCount, err := s.DiskUsage(); err != nil {
		logger.Debug("unable to measure store disk usage:", err)
	} else {
		if err := s.UpdateStats(func(stats *store.Stats) {
			stats.TotalBytes = totalBytes
			stats.EntryCount = entryCount
		}); err != nil {
			logger.Debug("unable to reconcile stats ledger:", err)
		}
		logger.Info("store holds", entryCount, "entries totaling", totalBytes, "bytes")
	}

	if sizeCap == 0 {
		return
	}

	if err := s.EvictUntil(sizeCap); err != nil {
		logger.Debug("eviction sweep failed during housekeeping:", err)
	}
}
