package buildcache

import (
	"fmt"
	"testing"
)

// TestVersionFormat tests that Version is formatted as expected.
func TestVersionFormat(t *testing.T) {
	expected := fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	if Version != expected {
		t.Errorf("version mismatch: %s != %s", Version, expected)
	}
}
