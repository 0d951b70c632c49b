package random

import (
	"testing"
)

// TestNew tests that New produces data of the requested length at the
// collision-resistant size identifiers rely on.
func TestNew(t *testing.T) {
	if data, err := New(CollisionResistantLength); err != nil {
		t.Fatal("unable to create random data:", err)
	} else if len(data) != CollisionResistantLength {
		t.Error("random data did not have expected length:", len(data), "!=", CollisionResistantLength)
	}
}
