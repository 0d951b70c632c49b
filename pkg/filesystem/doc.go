// Package filesystem provides various filesystem utility methods either not
// provided by the Go standard library or requiring a more optimized
// implementation, including atomic writes, no-replace renames, link-or-copy
// staging, and a fast directory walker.
package filesystem
