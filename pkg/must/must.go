// Package must provides small helpers for "best-effort" operations: actions
// whose failure should be logged (since it usually indicates something worth
// a human's attention) but must never interrupt the caller's control flow.
// Every cleanup and housekeeping path in the cache is expected to degrade
// gracefully, so these helpers are used pervasively for deferred closes and
// removals.
package must

import (
	"io"
	"os"

	"github.com/buildcache/buildcache/pkg/logging"
)

// Close closes c, logging (rather than propagating) any error.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes the file or empty directory at name, logging (rather than
// propagating) any error.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}

// Unlock unlocks locker, logging (rather than propagating) any error.
func Unlock(locker interface{ Unlock() error }, logger *logging.Logger) {
	if err := locker.Unlock(); err != nil {
		logger.Warnf("unable to unlock locker: %s", err.Error())
	}
}

// IOCopy copies from src to dst, logging (rather than propagating) any
// error.
func IOCopy(dst io.Writer, src io.Reader, logger *logging.Logger) {
	if _, err := io.Copy(dst, src); err != nil {
		logger.Warnf("unable to copy from source to destination: %s", err.Error())
	}
}

// Succeed logs a failure to complete task, rather than propagating err.
func Succeed(err error, task string, logger *logging.Logger) {
	if err != nil {
		logger.Warnf("unable to succeed at %s: %s", task, err.Error())
	}
}
