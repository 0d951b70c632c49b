package pipeline

import (
	"sort"

	"github.com/buildcache/buildcache/pkg/hash"
	"github.com/buildcache/buildcache/pkg/store"
)

// buildManifest hashes every implicit input discovered during preprocessing
// and packages the result as a manifest pinned to entryKey. The explicit
// sources don't need records here: their contents are already folded into
// the direct-mode key the manifest is filed under, so an edited source
// changes the key itself rather than invalidating the manifest. Records are
// deduplicated and sorted by path for deterministic serialization.
func buildManifest(algorithm hash.Algorithm, entryKey string, implicitInputs []string) (*store.Manifest, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, path := range implicitInputs {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	records := make([]store.ManifestRecord, 0, len(paths))
	for _, path := range paths {
		digest, err := hash.HashFileToHex(algorithm, path)
		if err != nil {
			return nil, err
		}
		records = append(records, store.ManifestRecord{Path: path, Hash: digest})
	}

	return &store.Manifest{EntryKey: entryKey, Records: records}, nil
}
