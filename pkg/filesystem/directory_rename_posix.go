//go:build !windows && !linux && !darwin
// +build !windows,!linux,!darwin

package filesystem

import (
	"golang.org/x/sys/unix"
)

// renameatNoReplaceRetryingOnEINTR is a wrapper around platform-specific
// renameat variants that can perform a renameat operation that fails (with
// EEXIST) if the target already exists. On platforms with no such variant it
// reports ENOSYS unconditionally, which routes publication through Rename's
// link-based fallback.
func renameatNoReplaceRetryingOnEINTR(_ int, _ string, _ int, _ string) error {
	return unix.ENOSYS
}
