package buildcache

import "fmt"

const (
	// VersionMajor represents the current major version of buildcache.
	VersionMajor = 0
	// VersionMinor represents the current minor version of buildcache.
	VersionMinor = 1
	// VersionPatch represents the current patch version of buildcache.
	VersionPatch = 0

	// HashFormatEpoch is the wrapper-owned hash-format epoch byte mixed
	// into every program ID. Bumping this value invalidates every
	// previously published entry and manifest, since it changes the digest
	// input for every direct-mode and preprocessed key.
	// It is bumped whenever the on-disk entry or manifest format changes in
	// a way that isn't otherwise reflected in the key.
	HashFormatEpoch = 1
)

// Version is the current version string, e.g. "0.1.0".
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
