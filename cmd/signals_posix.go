// +build !windows

package cmd

import (
	"os"
	"syscall"
)

// TerminationSignals are those signals which buildcache considers to be
// requesting termination. SIGHUP is included because compiler invocations
// frequently run inside interactive terminals whose closure should release
// store resources promptly.
var TerminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
}
