package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	extstat "github.com/mutagen-io/extstat"

	"github.com/buildcache/buildcache/pkg/filesystem"
)

// evictionCandidate describes a single entry directory discovered during an
// eviction sweep.
type evictionCandidate struct {
	entryKey string
	path     string
	size     uint64
	atime    int64
}

// collectEvictionCandidates walks the sharded entries directory tree and
// returns one candidate per entry directory, along with its total size and
// access time.
func (s *Store) collectEvictionCandidates() ([]evictionCandidate, error) {
	entriesRoot := filepath.Join(s.contentRoot, entriesDirectoryName)

	firstLevel, err := os.ReadDir(entriesRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to list entries root: %w", err)
	}

	var candidates []evictionCandidate
	for _, first := range firstLevel {
		if !first.IsDir() {
			continue
		}
		firstPath := filepath.Join(entriesRoot, first.Name())
		secondLevel, err := os.ReadDir(firstPath)
		if err != nil {
			continue
		}
		for _, second := range secondLevel {
			if !second.IsDir() {
				continue
			}
			secondPath := filepath.Join(firstPath, second.Name())
			restLevel, err := os.ReadDir(secondPath)
			if err != nil {
				continue
			}
			for _, rest := range restLevel {
				if !rest.IsDir() {
					continue
				}
				entryPath := filepath.Join(secondPath, rest.Name())
				entryKey := first.Name() + second.Name() + rest.Name()

				size, err := directorySize(entryPath)
				if err != nil {
					continue
				}

				atime := int64(0)
				if stat, err := extstat.NewFromFileName(entryPath); err == nil {
					atime = stat.AccessTime.UnixNano()
				}

				candidates = append(candidates, evictionCandidate{
					entryKey: entryKey,
					path:     entryPath,
					size:     size,
					atime:    atime,
				})
			}
		}
	}

	return candidates, nil
}

// DiskUsage walks the entries namespace and returns the total size in
// bytes of all regular files and the number of entries present. It's the
// ground truth the stats ledger is periodically reconciled against, since
// the ledger's incremental accounting drifts when entries are removed
// behind the store's back (a crashed eviction pass, a manual rm).
func (s *Store) DiskUsage() (uint64, uint64, error) {
	entriesRoot := filepath.Join(s.contentRoot, entriesDirectoryName)

	var totalBytes, entryCount uint64
	err := filesystem.Walk(entriesRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.Mode().IsRegular() {
			totalBytes += uint64(info.Size())
			// Every entry directory holds exactly one return-code file, so
			// counting them counts entries without tracking directory depth.
			if info.Name() == returnCodeArtifactName {
				entryCount++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return totalBytes, entryCount, nil
}

// directorySize sums the size of every regular file directly inside path
// (entry directories are never nested, so a shallow listing suffices).
func directorySize(path string) (uint64, error) {
	items, err := os.ReadDir(path)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, item := range items {
		info, err := item.Info()
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			total += uint64(info.Size())
		}
	}
	return total, nil
}

// EvictUntil performs a single-pass LRU-by-atime sweep, removing the
// least-recently-accessed entries until the total size is at most
// cap × low-water-mark. The candidate snapshot is taken under the ledger's
// exclusive lock so that it's consistent with respect to other lock
// holders; the deletes themselves proceed lock-free and tolerate entries
// disappearing concurrently (a racing publish or a previous eviction pass).
func (s *Store) EvictUntil(cap uint64) error {
	var candidates []evictionCandidate
	if err := s.withStatsLock(func() error {
		var err error
		candidates, err = s.collectEvictionCandidates()
		return err
	}); err != nil {
		return err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].atime < candidates[j].atime
	})

	var total uint64
	for _, candidate := range candidates {
		total += candidate.size
	}

	target := uint64(float64(cap) * lowWaterMark)

	var removedCount, removedBytes uint64
	for _, candidate := range candidates {
		if total <= target {
			break
		}
		if err := os.RemoveAll(candidate.path); err != nil {
			continue
		}
		total -= candidate.size
		removedCount++
		removedBytes += candidate.size
	}

	if removedCount == 0 {
		return nil
	}

	return s.UpdateStats(func(stats *Stats) {
		if stats.TotalBytes >= removedBytes {
			stats.TotalBytes -= removedBytes
		} else {
			stats.TotalBytes = 0
		}
		if stats.EntryCount >= removedCount {
			stats.EntryCount -= removedCount
		} else {
			stats.EntryCount = 0
		}
		stats.Evictions += removedCount
	})
}

// staleScratchAge is the age beyond which a leftover file in the scratch
// directory is assumed to belong to a crashed publisher rather than an
// in-flight one.
const staleScratchAge = time.Hour

// CleanScratch removes scratch-directory leftovers older than
// staleScratchAge. In-flight publishers are never affected: their staging
// paths are at most seconds old.
func (s *Store) CleanScratch() error {
	items, err := os.ReadDir(s.scratchDirectory())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to list scratch directory: %w", err)
	}

	cutoff := time.Now().Add(-staleScratchAge)
	for _, item := range items {
		info, err := item.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.scratchDirectory(), item.Name())); err != nil {
			s.logger.Debug("unable to remove stale scratch path", item.Name(), ":", err)
		}
	}
	return nil
}
