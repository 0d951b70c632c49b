package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/buildcache/buildcache/pkg/identifier"
	"github.com/buildcache/buildcache/pkg/logging"
	"github.com/buildcache/buildcache/pkg/store"
)

// asyncQueueCapacity bounds the number of in-flight asynchronous puts so
// that a slow or wedged remote never lets the queue grow without bound.
const asyncQueueCapacity = 64

// putTask is a single queued asynchronous replication request. Each task
// carries its own identifier so that log lines from the drain goroutine can
// be correlated with the enqueue site that produced them.
type putTask struct {
	id   string
	key  string
	blob []byte
}

// Client layers entry encoding, per-call timeouts, and best-effort
// asynchronous replication on top of a raw Provider.
type Client struct {
	provider Provider
	timeout  time.Duration
	logger   *logging.Logger

	queue chan putTask
	wait  sync.WaitGroup
}

// NewClient creates a client around the specified provider.
func NewClient(provider Provider, timeout time.Duration, logger *logging.Logger) *Client {
	client := &Client{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		queue:    make(chan putTask, asyncQueueCapacity),
	}

	client.wait.Add(1)
	go client.drain()

	return client
}

// drain is the background goroutine that performs queued asynchronous
// puts, one at a time, until the queue is closed.
func (c *Client) drain() {
	defer c.wait.Done()
	for task := range c.queue {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		err := c.provider.Put(ctx, task.key, task.blob)
		cancel()
		if err != nil {
			c.logger.Debug("asynchronous remote put", task.id, "failed for", task.key, ":", err)
		}
	}
}

// Has reports whether the remote provider has an entry for key.
func (c *Client) Has(key string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.provider.Has(ctx, key)
}

// Get retrieves and decodes the entry for key. A miss is reported via the
// second return value, not an error.
func (c *Client) Get(key string) (*store.Entry, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	blob, ok, err := c.provider.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("unable to fetch remote entry: %w", err)
	} else if !ok {
		return nil, false, nil
	}

	entry, err := DecodeEntry(blob)
	if err != nil {
		return nil, false, fmt.Errorf("unable to decode remote entry: %w", err)
	}
	return entry, true, nil
}

// Put synchronously encodes and uploads an entry for key.
func (c *Client) Put(key string, entry *store.Entry) error {
	blob, err := EncodeEntry(entry)
	if err != nil {
		return fmt.Errorf("unable to encode entry: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.provider.Put(ctx, key, blob)
}

// PutAsync enqueues an entry for best-effort, non-blocking replication to
// the remote provider. If the queue is full, the put is dropped and logged
// rather than blocking the caller.
func (c *Client) PutAsync(key string, entry *store.Entry) {
	blob, err := EncodeEntry(entry)
	if err != nil {
		c.logger.Debug("unable to encode entry for asynchronous put:", err)
		return
	}

	id, err := identifier.New(identifier.PrefixRemoteTask)
	if err != nil {
		id = key
	}

	select {
	case c.queue <- putTask{id: id, key: key, blob: blob}:
	default:
		c.logger.Debug("asynchronous remote put queue full, dropping put for", key)
	}
}

// Close stops accepting new asynchronous puts and waits for queued puts to
// drain.
func (c *Client) Close() {
	close(c.queue)
	c.wait.Wait()
}
