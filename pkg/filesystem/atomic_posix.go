// +build !windows

package filesystem

import (
	"os"
	"syscall"
)

// isCrossDeviceError checks whether or not an error returned by os.Rename or
// os.Link is due to an attempted operation across devices, the condition that
// makes LinkOrCopy fall back to a byte copy.
func isCrossDeviceError(err error) bool {
	if linkErr, ok := err.(*os.LinkError); !ok {
		return false
	} else {
		return linkErr.Err == syscall.EXDEV
	}
}
