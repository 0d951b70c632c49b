package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/buildcache/buildcache/pkg/filesystem"
	"github.com/buildcache/buildcache/pkg/must"
)

// Stats is the stats ledger recorded for a store: a single small file
// recording cumulative counters, updated under a global file lock as a
// read-modify-write of the whole record.
type Stats struct {
	// TotalBytes is the total on-disk size of all entries, in bytes.
	TotalBytes uint64 `json:"totalBytes"`
	// EntryCount is the number of entries currently stored.
	EntryCount uint64 `json:"entryCount"`
	// HitsDirect counts cache hits resolved via direct mode.
	HitsDirect uint64 `json:"hitsDirect"`
	// HitsPreprocessed counts cache hits resolved via the preprocessed key.
	HitsPreprocessed uint64 `json:"hitsPreprocessed"`
	// HitsRemote counts cache hits resolved via the remote provider.
	HitsRemote uint64 `json:"hitsRemote"`
	// Misses counts invocations that resulted in a cache miss.
	Misses uint64 `json:"misses"`
	// Evictions counts entries removed by eviction passes.
	Evictions uint64 `json:"evictions"`
}

// Stats returns a snapshot of the store's stats ledger. A ledger that
// doesn't yet exist is reported as a zero-valued Stats, not an error.
func (s *Store) Stats() (Stats, error) {
	var stats Stats
	if err := s.withStatsLock(func() error {
		loaded, err := s.readStatsLocked()
		if err != nil {
			return err
		}
		stats = loaded
		return nil
	}); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// ZeroStats resets every counter in the stats ledger to zero.
func (s *Store) ZeroStats() error {
	return s.withStatsLock(func() error {
		return s.writeStatsLocked(Stats{})
	})
}

// UpdateStats atomically applies mutate to the current stats ledger and
// persists the result. mutate is called while the ledger's exclusive lock
// is held, so it should be quick and must not itself call back into Stats,
// ZeroStats, or UpdateStats.
func (s *Store) UpdateStats(mutate func(*Stats)) error {
	return s.withStatsLock(func() error {
		stats, err := s.readStatsLocked()
		if err != nil {
			return err
		}
		mutate(&stats)
		return s.writeStatsLocked(stats)
	})
}

// withStatsLock acquires the stats ledger's exclusive lock, invokes fn, and
// releases the lock unconditionally afterward.
func (s *Store) withStatsLock(fn func() error) error {
	if err := s.statsLocker.Lock(true); err != nil {
		return fmt.Errorf("unable to acquire stats ledger lock: %w", err)
	}
	defer must.Unlock(s.statsLocker, s.logger)
	return fn()
}

// readStatsLocked reads the stats ledger. It must be called with the stats
// lock held.
func (s *Store) readStatsLocked() (Stats, error) {
	data, err := os.ReadFile(s.statsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("unable to read stats ledger: %w", err)
	}
	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		// A corrupt ledger is non-fatal: treat it as if it were empty rather
		// than failing every invocation that wants to update it.
		return Stats{}, nil
	}
	return stats, nil
}

// writeStatsLocked writes the stats ledger. It must be called with the
// stats lock held.
func (s *Store) writeStatsLocked(stats Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("unable to encode stats ledger: %w", err)
	}
	return filesystem.WriteFileAtomic(s.statsPath, data, 0600, s.logger)
}
