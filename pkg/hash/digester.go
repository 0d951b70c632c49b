// Package hash provides a streaming cryptographic digest abstraction used
// throughout the cache to derive direct-mode keys, preprocessed keys, and
// entry keys from byte sequences and file contents.
package hash

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// readBlockSize is the fixed block size used when feeding file contents
// through a Digester, chosen to match common filesystem block sizes without
// inflating memory use for small files.
const readBlockSize = 64 * 1024

// Digester computes a streaming digest over an arbitrary sequence of byte
// updates and file reads. It's not safe for concurrent use; each Digester
// should be confined to a single goroutine.
type Digester struct {
	// algorithm is the algorithm used to construct state.
	algorithm Algorithm
	// state is the underlying hash state.
	state hash.Hash
}

// NewDigester creates a new Digester using the specified algorithm.
func NewDigester(algorithm Algorithm) (*Digester, error) {
	factory, err := algorithm.Factory()
	if err != nil {
		return nil, err
	}
	return &Digester{
		algorithm: algorithm,
		state:     factory(),
	}, nil
}

// Update feeds data into the digest. It never fails.
func (d *Digester) Update(data []byte) {
	// Hash.Write never returns an error per the hash.Hash contract.
	d.state.Write(data)
}

// UpdateFromFile feeds the contents of the file at path into the digest,
// reading in fixed-size blocks. For identical byte content, the resulting
// digest is identical to one produced by feeding the same bytes through
// Update.
func (d *Digester) UpdateFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}
	defer file.Close()

	buffer := make([]byte, readBlockSize)
	for {
		n, err := file.Read(buffer)
		if n > 0 {
			d.state.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("unable to read file: %w", err)
		}
	}

	return nil
}

// Finalize returns the final digest without mutating the Digester's state,
// allowing further updates to be appended after a checkpoint is taken.
func (d *Digester) Finalize() []byte {
	return d.state.Sum(nil)
}

// FinalizeToHex returns the final digest rendered as lowercase hexadecimal.
func (d *Digester) FinalizeToHex() string {
	return hex.EncodeToString(d.Finalize())
}

// Reset restores the Digester to its initial, empty state so that it can be
// reused for a new computation.
func (d *Digester) Reset() {
	d.state.Reset()
}

// Sequence computes a digest over a sequence of byte slices in order, with
// each slice separated from the next by a NUL byte so that ("ab", "c") and
// ("a", "bc") never collide. It's a convenience wrapper for the common case
// of hashing a handful of independent fields (program ID, relevant args,
// relevant env, preprocessed text) into a single key.
func Sequence(algorithm Algorithm, fields ...[]byte) ([]byte, error) {
	digester, err := NewDigester(algorithm)
	if err != nil {
		return nil, err
	}
	for i, field := range fields {
		if i > 0 {
			digester.Update([]byte{0})
		}
		digester.Update(field)
	}
	return digester.Finalize(), nil
}

// SequenceToHex is equivalent to Sequence, but renders the result as
// lowercase hexadecimal.
func SequenceToHex(algorithm Algorithm, fields ...[]byte) (string, error) {
	digest, err := Sequence(algorithm, fields...)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}

// HashFile computes the digest of a single file's contents using the
// specified algorithm, without requiring a caller to manage a Digester.
func HashFile(algorithm Algorithm, path string) ([]byte, error) {
	digester, err := NewDigester(algorithm)
	if err != nil {
		return nil, err
	}
	if err := digester.UpdateFromFile(path); err != nil {
		return nil, err
	}
	return digester.Finalize(), nil
}

// HashFileToHex is equivalent to HashFile, but renders the result as
// lowercase hexadecimal.
func HashFileToHex(algorithm Algorithm, path string) (string, error) {
	digest, err := HashFile(algorithm, path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}
