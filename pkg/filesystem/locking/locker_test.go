package locking

import (
	"os"
	"testing"
)

// TestLockerFailOnDirectory tests that a locker creation fails for a directory.
func TestLockerFailOnDirectory(t *testing.T) {
	if _, err := NewLocker(t.TempDir(), 0600); err == nil {
		t.Fatal("creating a locker on a directory path succeeded")
	}
}

// TestLockerCycle tests the lifecycle of a Locker.
func TestLockerCycle(t *testing.T) {
	// Create a temporary file and defer its removal.
	lockfile, err := os.CreateTemp("", "buildcache_filesystem_lock")
	if err != nil {
		t.Fatal("unable to create temporary lock file:", err)
	} else if err = lockfile.Close(); err != nil {
		t.Error("unable to close temporary lock file:", err)
	}
	defer os.Remove(lockfile.Name())

	// Create a locker.
	locker, err := NewLocker(lockfile.Name(), 0600)
	if err != nil {
		t.Fatal("unable to create locker:", err)
	}

	// Verify that the lock state starts out unheld.
	if locker.Held() {
		t.Error("newly created locker incorrectly reports lock as held")
	}

	// Attempt to acquire the lock.
	if err := locker.Lock(true); err != nil {
		t.Fatal("unable to acquire lock:", err)
	}

	// Verify that the lock state is correct.
	if !locker.Held() {
		t.Error("lock incorrectly reported as unlocked")
	}

	// Attempt to release the lock.
	if err := locker.Unlock(); err != nil {
		t.Fatal("unable to release lock:", err)
	}

	if locker.Held() {
		t.Error("lock incorrectly reported as held after unlock")
	}

	// Attempt to close the locker.
	if err := locker.Close(); err != nil {
		t.Fatal("unable to close locker:", err)
	}
}
