// Package toolid implements the tool-ID memo: a tiny, disk-backed
// key/value store keyed by a tool's real path, recording
// "is this cc really clang/gcc, and what is its program ID" so that
// CanHandle/ProgramID don't need to re-exec the tool for every translation
// unit in a parallel build (where each invocation is a separate process and
// an in-memory cache alone wouldn't be shared across them).
package toolid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/buildcache/buildcache/pkg/encoding"
	"github.com/buildcache/buildcache/pkg/hash"
	"github.com/buildcache/buildcache/pkg/logging"
)

// DefaultTTL is the memo entry lifetime: long enough to cover the burst of
// identity checks a parallel build issues, short enough that a replaced
// toolchain is picked up promptly even without an mtime change.
const DefaultTTL = 30 * time.Second

// Decision is a cached tool-identity decision.
type Decision struct {
	// Supported indicates whether the tool at the recorded path was
	// recognized by some adapter.
	Supported bool `json:"supported"`
	// ProgramID is the adapter-reported program ID, valid only if
	// Supported is true.
	ProgramID string `json:"programId"`
	// ToolModTime is the Unix-nanosecond modification time of the tool
	// executable at the moment the decision was cached. A decision is
	// invalidated early if the tool's current mtime no longer matches this
	// value, even within the TTL window, which catches CI images that
	// rebuild a compiler shim faster than the TTL.
	ToolModTime int64 `json:"toolModTime"`
	// ExpiresAt is the Unix-nanosecond time after which the decision is no
	// longer valid.
	ExpiresAt int64 `json:"expiresAt"`
}

// Memo is a disk-backed store of tool-identity decisions.
type Memo struct {
	root   string
	ttl    time.Duration
	logger *logging.Logger
}

// Open opens (creating if necessary) a memo rooted at the specified
// directory, using DefaultTTL.
func Open(root string, logger *logging.Logger) (*Memo, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("unable to create tool-ID memo directory: %w", err)
	}
	return &Memo{root: root, ttl: DefaultTTL, logger: logger}, nil
}

// pathFor computes the on-disk path for the memo entry of a given tool
// path.
func (m *Memo) pathFor(toolPath string) (string, error) {
	key, err := hash.SequenceToHex(hash.AlgorithmSHA256, []byte(toolPath))
	if err != nil {
		return "", err
	}
	return filepath.Join(m.root, key), nil
}

// Lookup returns the cached decision for toolPath, if any unexpired
// decision exists whose recorded modification time still matches the
// tool's current modification time on disk.
func (m *Memo) Lookup(toolPath string) (*Decision, bool) {
	path, err := m.pathFor(toolPath)
	if err != nil {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var decision Decision
	if err := json.Unmarshal(data, &decision); err != nil {
		return nil, false
	}

	if time.Now().UnixNano() > decision.ExpiresAt {
		return nil, false
	}

	info, err := os.Stat(toolPath)
	if err != nil || info.ModTime().UnixNano() != decision.ToolModTime {
		return nil, false
	}

	return &decision, true
}

// Store records a decision for toolPath, valid until the memo's TTL
// elapses.
func (m *Memo) Store(toolPath string, supported bool, programID string) error {
	info, err := os.Stat(toolPath)
	if err != nil {
		return fmt.Errorf("unable to stat tool: %w", err)
	}

	decision := Decision{
		Supported:   supported,
		ProgramID:   programID,
		ToolModTime: info.ModTime().UnixNano(),
		ExpiresAt:   time.Now().Add(m.ttl).UnixNano(),
	}

	path, err := m.pathFor(toolPath)
	if err != nil {
		return err
	}

	return encoding.MarshalAndSave(path, m.logger, func() ([]byte, error) {
		return json.Marshal(&decision)
	})
}
