package buildcache

import "os"

// DebugEnabled controls whether or not verbose internal diagnostics are
// enabled. It is set automatically based on the BUILDCACHE_DEBUG environment
// variable and is consulted only by components that need a process-wide
// escape hatch outside the normal configuration/logging path (e.g. deciding
// whether to retain temporary scratch directories instead of cleaning them up
// on failure, to aid postmortem debugging of a failed publish).
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("BUILDCACHE_DEBUG") == "1"
}
