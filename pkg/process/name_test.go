package process

import (
	"testing"
)

// TestExecutableNameWindows tests that ExecutableName works correctly for a
// Windows target.
func TestExecutableNameWindows(t *testing.T) {
	if name := ExecutableName("cc", "windows"); name != "cc.exe" {
		t.Error("executable name incorrect for Windows")
	}
}

// TestExecutableNameLinux tests that ExecutableName works correctly for a Linux
// target.
func TestExecutableNameLinux(t *testing.T) {
	if name := ExecutableName("cc", "linux"); name != "cc" {
		t.Error("executable name incorrect for Linux")
	}
}
