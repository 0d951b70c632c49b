//go:build !windows
// +build !windows

package filesystem

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Rename renames source to target. If overwrite is false, the rename fails
// (without touching target) if target already exists; this is used by the
// store's publish path to implement first-writer-wins semantics without a
// TOCTOU race between an existence check and the rename itself. If overwrite
// is true, target is replaced atomically if it already exists, exactly as
// with a plain os.Rename.
func Rename(source, target string, overwrite bool) error {
	if overwrite {
		return os.Rename(source, target)
	}

	err := renameatNoReplaceRetryingOnEINTR(unix.AT_FDCWD, source, unix.AT_FDCWD, target)
	if err == nil {
		return nil
	} else if err == unix.EEXIST {
		return os.ErrExist
	} else if err == unix.ENOSYS || err == unix.ENOTSUP {
		// The no-replace rename primitive isn't available on this platform
		// or filesystem. For regular files, fall back to a link-then-remove
		// sequence, which preserves first-writer-wins semantics: Link fails
		// with EEXIST if the target already exists, and never replaces it.
		// Directories can't be hard-linked, so they fall back to a check
		// followed by a plain rename; the window between the two is
		// tolerable because entry keys are content-addressed and racing
		// publishers of the same key carry identical payloads.
		info, statErr := os.Lstat(source)
		if statErr != nil {
			return fmt.Errorf("unable to stat rename source: %w", statErr)
		}
		if info.IsDir() {
			if _, statErr := os.Lstat(target); statErr == nil {
				return os.ErrExist
			} else if !os.IsNotExist(statErr) {
				return fmt.Errorf("unable to check rename target: %w", statErr)
			}
			return os.Rename(source, target)
		}
		if linkErr := os.Link(source, target); linkErr != nil {
			if os.IsExist(linkErr) {
				return os.ErrExist
			}
			return fmt.Errorf("unable to link-rename: %w", linkErr)
		}
		return os.Remove(source)
	}

	return fmt.Errorf("unable to perform no-replace rename: %w", err)
}
