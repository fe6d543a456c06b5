package memory

import (
	"context"
	"sync"

	"github.com/aretw0/harrow/pkg/ports"
)

// tx buffers writes in an overlay until Commit applies them to the client
// under its lock. Rollback and Close without Commit discard the overlay.
type tx struct {
	client *Client

	mu      sync.Mutex
	writes  map[string]map[any]any
	removed map[string]map[any]bool
	done    bool // terminal transition (commit or rollback) reached
	closed  bool
}

func (t *tx) Cache(ctx context.Context, name string, keepBinary bool) (ports.Cache, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ports.ErrTxClosed
	}
	return &txCache{tx: t, name: name}, nil
}

func (t *tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.closed {
		return ports.ErrTxClosed
	}

	t.client.mu.Lock()
	for name, keys := range t.removed {
		table := t.client.table(name)
		for key, gone := range keys {
			if gone {
				delete(table, key)
			}
		}
	}
	for name, overlay := range t.writes {
		table := t.client.table(name)
		for key, value := range overlay {
			table[key] = value
		}
	}
	t.client.mu.Unlock()

	t.done = true
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.closed {
		return ports.ErrTxClosed
	}
	t.discard()
	t.done = true
	return nil
}

// Close releases the transaction. Uncommitted writes are discarded; closing
// twice is a no-op.
func (t *tx) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	if !t.done {
		t.discard()
	}
	t.closed = true
	return nil
}

// discard drops the buffers. Caller must hold t.mu.
func (t *tx) discard() {
	t.writes = make(map[string]map[any]any)
	t.removed = make(map[string]map[any]bool)
}

func (t *tx) overlay(name string) (map[any]any, map[any]bool) {
	w, ok := t.writes[name]
	if !ok {
		w = make(map[any]any)
		t.writes[name] = w
	}
	r, ok := t.removed[name]
	if !ok {
		r = make(map[any]bool)
		t.removed[name] = r
	}
	return w, r
}

// txCache reads through the overlay first, so a transaction observes its own
// uncommitted writes while other readers do not.
type txCache struct {
	tx   *tx
	name string
}

func (h *txCache) Name() string {
	return h.name
}

func (h *txCache) lookup(key any) (any, bool) {
	writes, removed := h.tx.overlay(h.name)
	if removed[key] {
		return nil, false
	}
	if v, ok := writes[key]; ok {
		return v, true
	}
	h.tx.client.mu.Lock()
	defer h.tx.client.mu.Unlock()
	v, ok := h.tx.client.table(h.name)[key]
	return v, ok
}

func (h *txCache) Get(ctx context.Context, key any) (*ports.Result, error) {
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return nil, ports.ErrTxClosed
	}
	v, ok := h.lookup(key)
	if !ok {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: v}), nil
}

func (h *txCache) Put(ctx context.Context, key, value any) error {
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return ports.ErrTxClosed
	}
	writes, removed := h.tx.overlay(h.name)
	writes[key] = value
	delete(removed, key)
	return nil
}

func (h *txCache) Remove(ctx context.Context, key any) (bool, error) {
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return false, ports.ErrTxClosed
	}
	_, existed := h.lookup(key)
	writes, removed := h.tx.overlay(h.name)
	delete(writes, key)
	removed[key] = true
	return existed, nil
}

func (h *txCache) GetAndPut(ctx context.Context, key, value any) (*ports.Result, error) {
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return nil, ports.ErrTxClosed
	}
	prev, existed := h.lookup(key)
	writes, removed := h.tx.overlay(h.name)
	writes[key] = value
	delete(removed, key)
	if !existed {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: prev}), nil
}

func (h *txCache) GetAndRemove(ctx context.Context, key any) (*ports.Result, error) {
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return nil, ports.ErrTxClosed
	}
	prev, existed := h.lookup(key)
	writes, removed := h.tx.overlay(h.name)
	delete(writes, key)
	removed[key] = true
	if !existed {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: prev}), nil
}

// Lock delegates to the client-level lock table; explicit locks are not
// scoped to the transaction.
func (h *txCache) Lock(ctx context.Context, key any) (ports.UnlockFunc, error) {
	base := &cache{client: h.tx.client, name: h.name}
	return base.Lock(ctx, key)
}
