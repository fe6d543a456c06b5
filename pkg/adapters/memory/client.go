// Package memory provides an in-process implementation of the cluster
// capability ports. It backs tests and examples and serves as the reference
// semantics for other adapters: buffered transactional writes invisible
// until commit, discard on close-without-commit, blocking per-key locks.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/harrow/pkg/ports"
)

// Client implements ports.Client over plain maps.
// Safe for concurrent use by many sessions.
type Client struct {
	mu     sync.Mutex
	caches map[string]map[any]any
	locks  map[string]*lockEntry
	closed bool
}

// New creates an empty in-memory client.
func New() *Client {
	return &Client{
		caches: make(map[string]map[any]any),
		locks:  make(map[string]*lockEntry),
	}
}

// Cache resolves a cache handle, creating the cache on first use.
// keepBinary is accepted for interface parity; values are stored as-is either
// way, so there is nothing to skip decoding.
func (c *Client) Cache(ctx context.Context, name string, keepBinary bool) (ports.Cache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ports.ErrClientClosed
	}
	return &cache{client: c, name: name}, nil
}

// Begin opens a transaction with a private write buffer.
func (c *Client) Begin(ctx context.Context, opts ports.TxOptions) (ports.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ports.ErrClientClosed
	}
	return &tx{
		client:  c,
		writes:  make(map[string]map[any]any),
		removed: make(map[string]map[any]bool),
	}, nil
}

// Close marks the client closed; subsequent handle lookups fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// table returns the backing map for a cache, creating it lazily.
// Caller must hold c.mu.
func (c *Client) table(name string) map[any]any {
	t, ok := c.caches[name]
	if !ok {
		t = make(map[any]any)
		c.caches[name] = t
	}
	return t
}

// lockEntry holds a per-key semaphore and its reference count, so entries
// for idle keys can be garbage collected. The channel has capacity one; a
// buffered send acquires the lock and a receive releases it.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

func (c *Client) acquireEntry(key string) *lockEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.locks[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		c.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (c *Client) releaseEntry(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(c.locks, key)
	}
}

// cache is a non-transactional handle to one named cache.
type cache struct {
	client *Client
	name   string
}

func (h *cache) Name() string {
	return h.name
}

func (h *cache) Get(ctx context.Context, key any) (*ports.Result, error) {
	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	v, ok := h.client.table(h.name)[key]
	if !ok {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: v}), nil
}

func (h *cache) Put(ctx context.Context, key, value any) error {
	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	h.client.table(h.name)[key] = value
	return nil
}

func (h *cache) Remove(ctx context.Context, key any) (bool, error) {
	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	t := h.client.table(h.name)
	_, ok := t[key]
	delete(t, key)
	return ok, nil
}

func (h *cache) GetAndPut(ctx context.Context, key, value any) (*ports.Result, error) {
	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	t := h.client.table(h.name)
	prev, ok := t[key]
	t[key] = value
	if !ok {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: prev}), nil
}

func (h *cache) GetAndRemove(ctx context.Context, key any) (*ports.Result, error) {
	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	t := h.client.table(h.name)
	prev, ok := t[key]
	delete(t, key)
	if !ok {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: prev}), nil
}

// Lock blocks until the per-key semaphore is held or the context is
// canceled. A canceled waiter backs out without leaving anything behind.
func (h *cache) Lock(ctx context.Context, key any) (ports.UnlockFunc, error) {
	id := fmt.Sprintf("%s/%v", h.name, key)
	entry := h.client.acquireEntry(id)

	select {
	case entry.sem <- struct{}{}:
		return func(context.Context) error {
			<-entry.sem
			h.client.releaseEntry(id)
			return nil
		}, nil
	case <-ctx.Done():
		h.client.releaseEntry(id)
		return nil, ctx.Err()
	}
}
