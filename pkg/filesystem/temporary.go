package filesystem

const (
	// TemporaryNamePrefix is the file name prefix used for all temporary files
	// and directories created by buildcache. Using this prefix makes such
	// files easy to recognize and sweep up if a process is interrupted before
	// it can clean up after itself.
	TemporaryNamePrefix = ".buildcache-temporary-"
)
