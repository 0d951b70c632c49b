package filesystem

import (
	"fmt"
	"io"
	"os"
)

// LinkOrCopy places a copy of source at target, preferring a hard link (to
// avoid a redundant byte copy when the cache and build tree live on the same
// device) and falling back to a byte-for-byte copy if the link fails because
// the two paths cross a device boundary or because the filesystem disallows
// hard links for the given permissions.
func LinkOrCopy(source, target string) error {
	if err := os.Link(source, target); err == nil {
		return nil
	} else if !isCrossDeviceError(err) && !os.IsPermission(err) {
		return fmt.Errorf("unable to link %s to %s: %w", source, target, err)
	}
	return copyFile(source, target)
}

// copyFile performs a byte-for-byte copy of source to target, preserving the
// source file's permissions and writing through a temporary file in the
// target's directory so that a reader never observes a partially-written
// target.
func copyFile(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("unable to stat source file: %w", err)
	}

	input, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("unable to open source file: %w", err)
	}
	defer input.Close()

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}

	return WriteFileAtomic(target, data, info.Mode().Perm(), nil)
}
