package hash

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"hash"
)

// Algorithm specifies a hashing algorithm for use in cache key derivation.
type Algorithm uint8

const (
	// AlgorithmSHA256 specifies SHA-256. It's the default algorithm and
	// satisfies the ≥128-bit collision-resistance requirement for every key
	// this package computes.
	AlgorithmSHA256 Algorithm = iota
	// AlgorithmSHA1 specifies SHA-1. It's kept available only for parity with
	// caches that were seeded using a SHA-1-keyed store; new stores should
	// use AlgorithmSHA256.
	AlgorithmSHA1
)

// Factory returns a new hash.Hash implementing the algorithm, or an error if
// the algorithm is unrecognized.
func (a Algorithm) Factory() (func() hash.Hash, error) {
	switch a {
	case AlgorithmSHA256:
		return sha256.New, nil
	case AlgorithmSHA1:
		return sha1.New, nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm: %d", a)
	}
}

// IsDefault indicates whether or not the algorithm is the default algorithm.
func (a Algorithm) IsDefault() bool {
	return a == AlgorithmSHA256
}

// String returns a human-readable representation of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmSHA256:
		return "SHA-256"
	case AlgorithmSHA1:
		return "SHA-1"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.MarshalText.
func (a Algorithm) MarshalText() ([]byte, error) {
	switch a {
	case AlgorithmSHA256:
		return []byte("sha256"), nil
	case AlgorithmSHA1:
		return []byte("sha1"), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm: %d", a)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.UnmarshalText.
func (a *Algorithm) UnmarshalText(text []byte) error {
	switch string(text) {
	case "sha256":
		*a = AlgorithmSHA256
	case "sha1":
		*a = AlgorithmSHA1
	default:
		return fmt.Errorf("unknown hash algorithm: %s", string(text))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.MarshalJSON.
func (a Algorithm) MarshalJSON() ([]byte, error) {
	text, err := a.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.UnmarshalJSON.
func (a *Algorithm) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(text))
}
