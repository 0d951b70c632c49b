package filesystem

import (
	"os"

	"github.com/buildcache/buildcache/pkg/buildcache"
	"github.com/buildcache/buildcache/pkg/logging"
)

const (
	// scratchDirectoryNamePrefix is the directory name prefix used for scoped
	// temporary directories.
	scratchDirectoryNamePrefix = TemporaryNamePrefix + "scratch"
)

// ScratchPath is a temporary path whose lifetime is scoped to the caller: the
// path is created empty (as a directory) by NewScratchPath and removed,
// recursively and best-effort, when Close is called. Any removal failure is
// logged rather than returned, since a leftover scratch directory is a
// housekeeping concern, not a correctness one.
type ScratchPath struct {
	// Path is the scratch directory's path.
	Path string
	logger *logging.Logger
}

// NewScratchPath creates a new empty scratch directory inside parent.
func NewScratchPath(parent string, logger *logging.Logger) (*ScratchPath, error) {
	path, err := os.MkdirTemp(parent, scratchDirectoryNamePrefix)
	if err != nil {
		return nil, err
	}
	return &ScratchPath{Path: path, logger: logger}, nil
}

// Close removes the scratch directory and its contents. Failures are logged
// (at warning level) rather than returned. When debugging is enabled, the
// path is retained instead, so that the staged state of a failed operation
// can be inspected postmortem.
func (s *ScratchPath) Close() {
	if buildcache.DebugEnabled {
		s.logger.Infof("retaining scratch path %s", s.Path)
		return
	}
	if err := os.RemoveAll(s.Path); err != nil {
		s.logger.Warnf("unable to remove scratch path %s: %s", s.Path, err.Error())
	}
}
