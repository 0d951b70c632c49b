// Package store implements the local content-addressed cache store: sharded
// entries and manifests on disk, a stats ledger, and LRU-by-atime eviction.
// Publishing is always first-writer-wins via filesystem.Rename's no-replace
// mode, so concurrent publishers of the same key never corrupt each other's
// data and never block on one another.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/buildcache/buildcache/pkg/filesystem/locking"
	"github.com/buildcache/buildcache/pkg/hash"
	"github.com/buildcache/buildcache/pkg/logging"
)

const (
	entriesDirectoryName   = "entries"
	manifestsDirectoryName = "manifests"
	temporaryDirectoryName = "tmp"
	statsFileName          = "stats"
	statsLockFileName      = "stats.lock"

	// lowWaterMark is the fraction of the size cap that EvictUntil targets,
	// giving publishers headroom before the next eviction pass is needed.
	lowWaterMark = 0.9
)

// Store is a local, content-addressed cache store rooted at a single
// directory on disk.
type Store struct {
	// root is the store's root directory.
	root string
	// contentRoot is root/c, the parent of entries/, manifests/, and tmp/.
	contentRoot string
	// algorithm is the hash algorithm used to verify manifest file contents.
	algorithm hash.Algorithm
	// logger is the store's logger.
	logger *logging.Logger
	// statsLocker guards read-modify-write access to the stats ledger.
	statsLocker *locking.Locker
	// statsPath is the path to the stats ledger file.
	statsPath string
}

// Open opens (creating if necessary) a local store rooted at the specified
// directory.
func Open(root string, algorithm hash.Algorithm, logger *logging.Logger) (*Store, error) {
	contentRoot := filepath.Join(root, "c")

	for _, directory := range []string{
		root,
		contentRoot,
		filepath.Join(contentRoot, entriesDirectoryName),
		filepath.Join(contentRoot, manifestsDirectoryName),
		filepath.Join(contentRoot, temporaryDirectoryName),
	} {
		if err := os.MkdirAll(directory, 0700); err != nil {
			return nil, fmt.Errorf("unable to create store directory %s: %w", directory, err)
		}
	}

	statsPath := filepath.Join(root, statsFileName)
	statsLocker, err := locking.NewLocker(filepath.Join(root, statsLockFileName), 0600)
	if err != nil {
		return nil, fmt.Errorf("unable to create stats ledger locker: %w", err)
	}

	return &Store{
		root:        root,
		contentRoot: contentRoot,
		algorithm:   algorithm,
		logger:      logger,
		statsLocker: statsLocker,
		statsPath:   statsPath,
	}, nil
}

// Close releases resources held by the store. It does not remove any
// on-disk state.
func (s *Store) Close() error {
	return s.statsLocker.Close()
}

// shardedPath computes the on-disk path for a hex-encoded key under the
// specified namespace directory (entries or manifests), using two levels
// of two-character hex-prefix sharding: enough fan-out for millions of
// entries without excessive inode churn.
func (s *Store) shardedPath(namespace, key string) (string, error) {
	if len(key) < 5 {
		return "", fmt.Errorf("key too short for sharding: %q", key)
	}
	first, second, rest := key[:2], key[2:4], key[4:]
	return filepath.Join(s.contentRoot, namespace, first, second, rest), nil
}

// scratchDirectory returns the path to the store's temporary scratch
// directory, used as the staging area for atomic renames (it lives on the
// same filesystem as entries/ and manifests/ so the final rename is atomic).
func (s *Store) scratchDirectory() string {
	return filepath.Join(s.contentRoot, temporaryDirectoryName)
}

// Clear removes all entries and manifests from the store, leaving the
// stats ledger structure (and its counters) untouched.
func (s *Store) Clear() error {
	for _, namespace := range []string{entriesDirectoryName, manifestsDirectoryName} {
		directory := filepath.Join(s.contentRoot, namespace)
		if err := os.RemoveAll(directory); err != nil {
			return fmt.Errorf("unable to remove %s: %w", namespace, err)
		}
		if err := os.MkdirAll(directory, 0700); err != nil {
			return fmt.Errorf("unable to recreate %s: %w", namespace, err)
		}
	}
	return nil
}
