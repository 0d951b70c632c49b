package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/buildcache/buildcache/pkg/filesystem"
	"github.com/buildcache/buildcache/pkg/hash"
	"github.com/buildcache/buildcache/pkg/identifier"
)

const (
	// manifestFormatVersion is the version recorded on the first line of
	// every manifest file.
	manifestFormatVersion = 1

	// CurrentManifestVersion is exported so that callers outside this
	// package (the invocation pipeline) can recognize a manifest written by
	// an incompatible future format without duplicating the constant.
	CurrentManifestVersion = manifestFormatVersion

	// manifestTemporaryNamePrefix is used for manifest staging files created
	// in the store's scratch area before they're renamed into place.
	manifestTemporaryNamePrefix = filesystem.TemporaryNamePrefix + "manifest-"
)

// ManifestRecord records a single implicit input's canonicalized path and
// the content hash it had at the moment the manifest was written.
type ManifestRecord struct {
	// Path is the absolute, canonicalized, NFC-normalized path of the file.
	Path string
	// Hash is the lowercase hexadecimal content hash of the file.
	Hash string
}

// Manifest enumerates the implicit inputs (headers/includes) discovered
// during a prior preprocessor run for a given direct-mode key, along with
// the entry key they resolve to.
type Manifest struct {
	// Version is the manifest format version.
	Version int
	// EntryKey is the entry key this manifest resolves to.
	EntryKey string
	// Records is the list of implicit inputs and their recorded hashes.
	Records []ManifestRecord
}

// serialize renders the manifest using its line-oriented on-disk format:
// version, entry key, record count, then one path<TAB>hash record per
// line.
func (m *Manifest) serialize() []byte {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d\n", m.Version)
	fmt.Fprintf(&builder, "%s\n", m.EntryKey)
	fmt.Fprintf(&builder, "%d\n", len(m.Records))
	for _, record := range m.Records {
		fmt.Fprintf(&builder, "%s\t%s\n", record.Path, record.Hash)
	}
	return []byte(builder.String())
}

// parseManifest parses a manifest from its on-disk line-oriented
// representation.
func parseManifest(data []byte) (*Manifest, error) {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	readLine := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("unable to read manifest: %w", err)
			}
			return "", fmt.Errorf("manifest truncated")
		}
		return scanner.Text(), nil
	}

	versionLine, err := readLine()
	if err != nil {
		return nil, err
	}
	version, err := strconv.Atoi(versionLine)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest version: %w", err)
	}

	entryKey, err := readLine()
	if err != nil {
		return nil, err
	}

	countLine, err := readLine()
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(countLine)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("invalid manifest record count")
	}

	records := make([]ManifestRecord, 0, count)
	for i := 0; i < count; i++ {
		line, err := readLine()
		if err != nil {
			return nil, err
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid manifest record: %q", line)
		}
		records = append(records, ManifestRecord{Path: fields[0], Hash: fields[1]})
	}

	return &Manifest{Version: version, EntryKey: entryKey, Records: records}, nil
}

// Verify checks whether every file recorded in the manifest currently
// exists and hashes to its recorded value. A manifest is valid iff all
// records check out.
func (m *Manifest) Verify(algorithm hash.Algorithm) (bool, error) {
	for _, record := range m.Records {
		digest, err := hash.HashFileToHex(algorithm, record.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("unable to hash manifest input %s: %w", record.Path, err)
		}
		if digest != record.Hash {
			return false, nil
		}
	}
	return true, nil
}

// manifestDirectory returns the sharded directory holding every manifest
// published for a given direct-mode key.
func (s *Store) manifestDirectory(directKey string) (string, error) {
	return s.shardedPath(manifestsDirectoryName, directKey)
}

// LookupManifest returns every manifest published for the specified
// direct-mode key, ordered newest-first. A direct key with no manifests
// yields an empty, non-error result.
func (s *Store) LookupManifest(directKey string) ([]*Manifest, error) {
	directory, err := s.manifestDirectory(directKey)
	if err != nil {
		return nil, err
	}

	items, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to list manifest directory: %w", err)
	}

	type timestamped struct {
		manifest *Manifest
		modTime  int64
	}
	candidates := make([]timestamped, 0, len(items))
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		path := filepath.Join(directory, item.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		manifest, err := parseManifest(data)
		if err != nil {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, timestamped{manifest, info.ModTime().UnixNano()})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})

	manifests := make([]*Manifest, len(candidates))
	for i, candidate := range candidates {
		manifests[i] = candidate.manifest
	}
	return manifests, nil
}

// PublishManifest publishes a manifest under the specified direct-mode
// key. Publishing a (direct key, entry key) pair that already exists is a
// no-op.
func (s *Store) PublishManifest(directKey string, manifest *Manifest) error {
	directory, err := s.manifestDirectory(directKey)
	if err != nil {
		return err
	}
	finalPath := filepath.Join(directory, manifest.EntryKey)
	if _, err := os.Stat(finalPath); err == nil {
		return nil
	}

	if manifest.Version == 0 {
		manifest.Version = manifestFormatVersion
	}

	// Manifest staging files are named by a collision-resistant identifier
	// rather than an O_EXCL retry loop, since concurrent publishers from
	// separate processes share the scratch directory.
	stagingName, err := identifier.New(identifier.PrefixTemporary)
	if err != nil {
		return fmt.Errorf("unable to generate manifest staging name: %w", err)
	}
	stagingPath := filepath.Join(s.scratchDirectory(), manifestTemporaryNamePrefix+stagingName)
	if err := os.WriteFile(stagingPath, manifest.serialize(), 0600); err != nil {
		return fmt.Errorf("unable to write manifest staging file: %w", err)
	}
	defer os.Remove(stagingPath)

	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("unable to create manifest shard directory: %w", err)
	}

	if err := filesystem.Rename(stagingPath, finalPath, false); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("unable to publish manifest: %w", err)
	}

	return nil
}
