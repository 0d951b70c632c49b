package remote

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/buildcache/buildcache/pkg/logging"
	"github.com/buildcache/buildcache/pkg/remote/memprovider"
	"github.com/buildcache/buildcache/pkg/store"
)

// TestClientPutAndGet tests that a synchronous Put followed by Get round
// trips an entry through a client.
func TestClientPutAndGet(t *testing.T) {
	logger := logging.NewLogger(logging.LevelError, &bytes.Buffer{})
	client := NewClient(memprovider.New(), time.Second, logger)
	defer client.Close()

	entry := &store.Entry{
		Artifacts:  map[string][]byte{"object": []byte("bytes")},
		ReturnCode: 0,
	}

	if err := client.Put("key-1", entry); err != nil {
		t.Fatal("unable to put entry:", err)
	}

	has, err := client.Has("key-1")
	if err != nil || !has {
		t.Fatal("client reports no entry after put:", err)
	}

	fetched, ok, err := client.Get("key-1")
	if err != nil {
		t.Fatal("unable to get entry:", err)
	}
	if !ok {
		t.Fatal("get reported miss for published entry")
	}
	if string(fetched.Artifacts["object"]) != "bytes" {
		t.Error("fetched entry contents don't match")
	}
}

// TestClientGetMiss tests that Get reports a miss for an unknown key
// without an error.
func TestClientGetMiss(t *testing.T) {
	logger := logging.NewLogger(logging.LevelError, &bytes.Buffer{})
	client := NewClient(memprovider.New(), time.Second, logger)
	defer client.Close()

	_, ok, err := client.Get("missing")
	if err != nil {
		t.Fatal("get of missing key returned an error:", err)
	}
	if ok {
		t.Error("get of missing key reported a hit")
	}
}

// TestClientPutAsyncDrainsOnClose tests that an asynchronously queued put
// is visible after Close drains the queue.
func TestClientPutAsyncDrainsOnClose(t *testing.T) {
	logger := logging.NewLogger(logging.LevelError, &bytes.Buffer{})
	provider := memprovider.New()
	client := NewClient(provider, time.Second, logger)

	entry := &store.Entry{Artifacts: map[string][]byte{"object": []byte("async")}}
	client.PutAsync("key-async", entry)
	client.Close()

	blob, ok, err := provider.Get(context.Background(), "key-async")
	if err != nil || !ok {
		t.Fatal("asynchronous put did not complete before drain returned:", err)
	}
	fetched, err := DecodeEntry(blob)
	if err != nil {
		t.Fatal("unable to decode entry:", err)
	}
	if string(fetched.Artifacts["object"]) != "async" {
		t.Error("asynchronously put entry contents don't match")
	}
}
