package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/buildcache/buildcache/pkg/filesystem"
)

const (
	// stdoutArtifactName is the reserved artifact file name holding captured
	// standard output.
	stdoutArtifactName = "stdout"
	// stderrArtifactName is the reserved artifact file name holding captured
	// standard error.
	stderrArtifactName = "stderr"
	// returnCodeArtifactName is the reserved artifact file name holding the
	// tool's return code, rendered as a decimal integer.
	returnCodeArtifactName = "return_code"
)

// reservedArtifactNames are the file names within an entry directory that
// don't correspond to a tool-produced artifact.
var reservedArtifactNames = map[string]bool{
	stdoutArtifactName:     true,
	stderrArtifactName:     true,
	returnCodeArtifactName: true,
}

// Entry is a stored cache entry: the artifact bundle produced by a cached
// invocation, plus its captured standard output, standard error, and
// return code.
type Entry struct {
	// Artifacts maps artifact ID (e.g. "object", "coverage") to file
	// contents.
	Artifacts map[string][]byte
	// Stdout is the captured standard output of the original invocation.
	Stdout []byte
	// Stderr is the captured standard error of the original invocation.
	Stderr []byte
	// ReturnCode is the original invocation's return code.
	ReturnCode int
}

// LookupEntry looks up the entry for the specified entry key. A missing
// entry is reported via the second return value, not an error; an error
// indicates a lookup or decode failure that a caller should treat as a
// miss after logging.
func (s *Store) LookupEntry(entryKey string) (*Entry, bool, error) {
	path, err := s.shardedPath(entriesDirectoryName, entryKey)
	if err != nil {
		return nil, false, err
	}

	contents, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("unable to list entry directory: %w", err)
	}

	entry := &Entry{Artifacts: make(map[string][]byte)}
	for _, item := range contents {
		if item.IsDir() {
			continue
		}
		name := item.Name()
		data, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			return nil, false, fmt.Errorf("unable to read entry file %s: %w", name, err)
		}
		switch name {
		case stdoutArtifactName:
			entry.Stdout = data
		case stderrArtifactName:
			entry.Stderr = data
		case returnCodeArtifactName:
			code, err := strconv.Atoi(string(data))
			if err != nil {
				return nil, false, fmt.Errorf("invalid return code in entry: %w", err)
			}
			entry.ReturnCode = code
		default:
			entry.Artifacts[name] = data
		}
	}

	return entry, true, nil
}

// PublishEntry publishes an entry under the specified entry key. Publishing
// is idempotent: if an entry already exists for the key, the new entry's
// contents are discarded and the call returns successfully, since the first
// publisher is always canonical.
func (s *Store) PublishEntry(entryKey string, entry *Entry) error {
	finalPath, err := s.shardedPath(entriesDirectoryName, entryKey)
	if err != nil {
		return err
	}
	if _, err := os.Stat(finalPath); err == nil {
		return nil
	}

	staging, err := filesystem.NewScratchPath(s.scratchDirectory(), s.logger)
	if err != nil {
		return fmt.Errorf("unable to create entry staging directory: %w", err)
	}
	defer staging.Close()

	var stagedBytes uint64
	stage := func(name string, data []byte) error {
		if err := os.WriteFile(filepath.Join(staging.Path, name), data, 0600); err != nil {
			return fmt.Errorf("unable to stage %s: %w", name, err)
		}
		stagedBytes += uint64(len(data))
		return nil
	}

	for name, data := range entry.Artifacts {
		if reservedArtifactNames[name] {
			return fmt.Errorf("artifact name collides with reserved name: %s", name)
		}
		if err := stage(name, data); err != nil {
			return err
		}
	}
	if err := stage(stdoutArtifactName, entry.Stdout); err != nil {
		return err
	}
	if err := stage(stderrArtifactName, entry.Stderr); err != nil {
		return err
	}
	if err := stage(returnCodeArtifactName, []byte(strconv.Itoa(entry.ReturnCode))); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0700); err != nil {
		return fmt.Errorf("unable to create entry shard directory: %w", err)
	}

	if err := filesystem.Rename(staging.Path, finalPath, false); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("unable to publish entry: %w", err)
	}

	if err := s.UpdateStats(func(stats *Stats) {
		stats.TotalBytes += stagedBytes
		stats.EntryCount++
	}); err != nil {
		s.logger.Debug("unable to account published entry in stats ledger:", err)
	}

	return nil
}

// ArtifactPath returns the on-disk path of a single artifact within a
// published entry, for callers that want to hard-link or copy it into place
// rather than rewrite it from memory. The path is computed without touching
// the filesystem; callers must tolerate the entry having been evicted by
// the time they use it.
func (s *Store) ArtifactPath(entryKey, artifactID string) (string, error) {
	if reservedArtifactNames[artifactID] {
		return "", fmt.Errorf("not an artifact: %s", artifactID)
	}
	path, err := s.shardedPath(entriesDirectoryName, entryKey)
	if err != nil {
		return "", err
	}
	return filepath.Join(path, artifactID), nil
}

// RecordAccess updates the entry's access time, marking it as recently used
// for the purposes of LRU-by-atime eviction. It uses an explicit Chtimes
// call rather than relying on implicit filesystem atime updates on read,
// since many production filesystems are mounted noatime or relatime and
// would otherwise never reflect a cache hit.
func (s *Store) RecordAccess(entryKey string) error {
	path, err := s.shardedPath(entriesDirectoryName, entryKey)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("unable to record access: %w", err)
	}
	return nil
}
