package filesystem

import (
	"fmt"
	"os"
)

// Rename renames source to target. If overwrite is false, the rename fails
// (without touching target) if target already exists. Windows has no direct
// equivalent of Linux's RENAME_NOREPLACE, so the no-replace case is
// implemented with a link-then-remove sequence for regular files:
// CreateHardLink (which os.Link invokes) fails if target exists and never
// replaces it. Directories can't be hard-linked, so they fall back to a
// check followed by a plain rename; os.Rename on Windows refuses to replace
// an existing directory, which closes the remaining race.
func Rename(source, target string, overwrite bool) error {
	if overwrite {
		return os.Rename(source, target)
	}

	info, err := os.Lstat(source)
	if err != nil {
		return fmt.Errorf("unable to stat rename source: %w", err)
	}
	if info.IsDir() {
		if _, err := os.Lstat(target); err == nil {
			return os.ErrExist
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("unable to check rename target: %w", err)
		}
		return os.Rename(source, target)
	}

	if err := os.Link(source, target); err != nil {
		if os.IsExist(err) {
			return os.ErrExist
		}
		return fmt.Errorf("unable to link-rename: %w", err)
	}
	return os.Remove(source)
}
