// Package random provides cryptographically random byte generation, used to
// seed the collision-resistant identifiers that name scratch resources
// shared between concurrently publishing processes.
package random

import (
	"crypto/rand"
	"fmt"
)

const (
	// CollisionResistantLength is the number of random bytes needed to
	// ensure collision resistance in a generated value. It's sized so that
	// birthday-bound collisions are implausible even across a large CI
	// fleet's worth of concurrently generated identifiers.
	CollisionResistantLength = 32
)

// New returns a byte slice of the specified length with cryptographically
// random contents.
func New(length int) ([]byte, error) {
	// Create the buffer.
	result := make([]byte, length)

	// Read random data.
	if _, err := rand.Read(result[:]); err != nil {
		return nil, fmt.Errorf("unable to read random data: %w", err)
	}

	// Success.
	return result, nil
}
