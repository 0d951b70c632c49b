package filesystem

import (
	"fmt"
	"path/filepath"
)

// ResolvePath returns the canonicalized, absolute form of path: symbolic
// links are resolved and the result is cleaned via filepath.Clean. This is
// used throughout the cache to normalize paths before they participate in a
// digest (manifest file paths, source file paths) or a PATH search (resolving
// a symlink-installed compiler shim to the real tool it shadows), since two
// different spellings of the same file must never produce different cache
// keys.
func ResolvePath(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("unable to compute absolute path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return "", fmt.Errorf("unable to resolve symbolic links: %w", err)
	}

	return filepath.Clean(resolved), nil
}
