package locking

import (
	"os"

	"github.com/pkg/errors"
)

// Locker provides file locking facilities.
type Locker struct {
	// The underlying file object to be locked.
	file *os.File
	// held tracks whether or not the lock is currently held by this Locker.
	held bool
}

// NewLocker attempts to create a lock with the file at the specified path,
// creating the file if necessary. The lock is returned in an unlocked state.
func NewLocker(path string, permissions os.FileMode) (*Locker, error) {
	mode := os.O_RDWR | os.O_CREATE | os.O_APPEND
	if file, err := os.OpenFile(path, mode, permissions); err != nil {
		return nil, errors.Wrap(err, "unable to open lock file")
	} else {
		return &Locker{file: file}, nil
	}
}

// Lock attempts to acquire the file lock, blocking until it can be acquired
// if block is true, and failing immediately otherwise.
func (l *Locker) Lock(block bool) error {
	if err := l.lock(block); err != nil {
		return err
	}
	l.held = true
	return nil
}

// Unlock releases the file lock.
func (l *Locker) Unlock() error {
	if err := l.unlock(); err != nil {
		return err
	}
	l.held = false
	return nil
}

// Held returns whether or not the lock is currently held by this Locker.
func (l *Locker) Held() bool {
	return l.held
}

// Close closes the underlying lock file. It does not release the lock if
// currently held; callers should Unlock before Close.
func (l *Locker) Close() error {
	return l.file.Close()
}
