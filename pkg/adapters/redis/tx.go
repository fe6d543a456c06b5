package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/harrow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// bufferedOp is one write queued for the commit pipeline, in issuance order.
type bufferedOp struct {
	del  bool
	key  string
	data []byte
}

// tx buffers writes client-side and flushes them through a MULTI/EXEC
// pipeline on Commit. Reads go through the buffer first so the transaction
// observes its own writes.
type tx struct {
	client *Client

	mu      sync.Mutex
	order   []bufferedOp
	writes  map[string][]byte
	removed map[string]bool
	done    bool
	closed  bool
}

func newTx(client *Client) *tx {
	return &tx{
		client:  client,
		writes:  make(map[string][]byte),
		removed: make(map[string]bool),
	}
}

func (t *tx) Cache(ctx context.Context, name string, keepBinary bool) (ports.Cache, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ports.ErrTxClosed
	}
	return &txCache{tx: t, name: name, keepBinary: keepBinary}, nil
}

func (t *tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.closed {
		return ports.ErrTxClosed
	}

	if len(t.order) > 0 {
		pipe := t.client.rdb.TxPipeline()
		for _, op := range t.order {
			if op.del {
				pipe.Del(ctx, op.key)
			} else {
				pipe.Set(ctx, op.key, op.data, 0)
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis tx exec: %w", err)
		}
	}

	t.discard()
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
	t.order = nil
	t.writes = make(map[string][]byte)
	t.removed = make(map[string]bool)
}

// txCache is a cache view bound to a transaction.
type txCache struct {
	tx         *tx
	name       string
	keepBinary bool
}

func (h *txCache) Name() string {
	return h.name
}

// lookup reads through the buffer, falling back to redis. Caller must hold
// tx.mu.
func (h *txCache) lookup(ctx context.Context, key string) ([]byte, bool, error) {
	if h.tx.removed[key] {
		return nil, false, nil
	}
	if data, ok := h.tx.writes[key]; ok {
		return data, true, nil
	}
	data, err := h.tx.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

func (h *txCache) put(key string, data []byte) {
	h.tx.writes[key] = data
	delete(h.tx.removed, key)
	h.tx.order = append(h.tx.order, bufferedOp{key: key, data: data})
}

func (h *txCache) remove(key string) {
	delete(h.tx.writes, key)
	h.tx.removed[key] = true
	h.tx.order = append(h.tx.order, bufferedOp{del: true, key: key})
}

func (h *txCache) Get(ctx context.Context, key any) (*ports.Result, error) {
	k, err := h.tx.client.cacheKey(h.name, key)
	if err != nil {
		return nil, err
	}
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return nil, ports.ErrTxClosed
	}
	data, ok, err := h.lookup(ctx, k)
	if err != nil {
		return nil, err
	}
	if !ok {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: decodeValue(data, h.keepBinary)}), nil
}

func (h *txCache) Put(ctx context.Context, key, value any) error {
	k, err := h.tx.client.cacheKey(h.name, key)
	if err != nil {
		return err
	}
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return ports.ErrTxClosed
	}
	h.put(k, data)
	return nil
}

func (h *txCache) Remove(ctx context.Context, key any) (bool, error) {
	k, err := h.tx.client.cacheKey(h.name, key)
	if err != nil {
		return false, err
	}
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return false, ports.ErrTxClosed
	}
	_, existed, err := h.lookup(ctx, k)
	if err != nil {
		return false, err
	}
	h.remove(k)
	return existed, nil
}

func (h *txCache) GetAndPut(ctx context.Context, key, value any) (*ports.Result, error) {
	k, err := h.tx.client.cacheKey(h.name, key)
	if err != nil {
		return nil, err
	}
	data, err := encodeValue(value)
	if err != nil {
		return nil, err
	}
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return nil, ports.ErrTxClosed
	}
	prev, existed, err := h.lookup(ctx, k)
	if err != nil {
		return nil, err
	}
	h.put(k, data)
	if !existed {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: decodeValue(prev, h.keepBinary)}), nil
}

func (h *txCache) GetAndRemove(ctx context.Context, key any) (*ports.Result, error) {
	k, err := h.tx.client.cacheKey(h.name, key)
	if err != nil {
		return nil, err
	}
	h.tx.mu.Lock()
	defer h.tx.mu.Unlock()
	if h.tx.closed {
		return nil, ports.ErrTxClosed
	}
	prev, existed, err := h.lookup(ctx, k)
	if err != nil {
		return nil, err
	}
	h.remove(k)
	if !existed {
		return ports.NewResult(), nil
	}
	return ports.NewResult(ports.Entry{Key: key, Value: decodeValue(prev, h.keepBinary)}), nil
}

// Lock delegates to the non-transactional handle; explicit locks are not
// scoped to the transaction.
func (h *txCache) Lock(ctx context.Context, key any) (ports.UnlockFunc, error) {
	base := &cache{client: h.tx.client, name: h.name, keepBinary: h.keepBinary}
	return base.Lock(ctx, key)
}
