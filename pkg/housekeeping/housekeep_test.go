package housekeeping

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/buildcache/buildcache/pkg/hash"
	"github.com/buildcache/buildcache/pkg/logging"
	"github.com/buildcache/buildcache/pkg/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "store"), hash.AlgorithmSHA256, logging.NewLogger(logging.LevelError, &bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestHousekeepNoCap tests that Housekeep completes its scratch cleanup and
// ledger reconciliation without evicting when sizeCap is zero.
func TestHousekeepNoCap(t *testing.T) {
	s := newTestStore(t)
	logger := logging.NewLogger(logging.LevelError, &bytes.Buffer{})
	Housekeep(s, 0, logger)
}

// TestHousekeepEvicts tests that Housekeep evicts entries once the store
// exceeds the given size cap.
func TestHousekeepEvicts(t *testing.T) {
	s := newTestStore(t)
	logger := logging.NewLogger(logging.LevelError, &bytes.Buffer{})

	for i := 0; i < 5; i++ {
		key, err := hash.SequenceToHex(hash.AlgorithmSHA256, []byte{byte(i)})
		if err != nil {
			t.Fatal(err)
		}
		entry := &store.Entry{
			Artifacts: map[string][]byte{"object": bytes.Repeat([]byte{byte(i)}, 1024)},
		}
		if err := s.PublishEntry(key, entry); err != nil {
			t.Fatal(err)
		}
	}

	Housekeep(s, 2048, logger)

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalBytes > 2048 {
		t.Fatalf("expected eviction to bring store under cap, got %d bytes", stats.TotalBytes)
	}
}

// TestHousekeepRegularlyStopsOnCancel tests that HousekeepRegularly returns
// promptly once its context is cancelled.
func TestHousekeepRegularlyStopsOnCancel(t *testing.T) {
	s := newTestStore(t)
	logger := logging.NewLogger(logging.LevelError, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		HousekeepRegularly(ctx, s, 0, logger)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("HousekeepRegularly did not return after cancellation")
	}
}
