// Package redis implements the cluster capability ports over Redis.
//
// Each named cache maps to its own keyspace under a configurable prefix.
// Transactions buffer writes client-side and flush them atomically through a
// MULTI/EXEC pipeline on commit, so uncommitted writes are invisible to other
// readers and close-without-commit discards them. Explicit locks use SET NX
// with a TTL and a value-checked release.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/harrow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Client implements ports.Client over a go-redis client.
type Client struct {
	rdb     *backend.Client
	prefix  string
	lockTTL time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithPrefix sets the key prefix for all caches (default "harrow:cache:").
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = prefix
	}
}

// WithLockTTL sets the expiration for explicit locks, bounding how long a
// crashed holder can block others (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.lockTTL = ttl
	}
}

// New creates a Redis-backed client with options.
func New(address, password string, db int, opts ...Option) *Client {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis-backed client from an existing connection.
func NewFromClient(rdb *backend.Client, opts ...Option) *Client {
	client := &Client{
		rdb:     rdb,
		prefix:  "harrow:cache:",
		lockTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Cache resolves a cache handle. Redis creates keys on first write, so any
// name resolves successfully.
func (c *Client) Cache(ctx context.Context, name string, keepBinary bool) (ports.Cache, error) {
	return &cache{client: c, name: name, keepBinary: keepBinary}, nil
}

// Begin opens a transaction with a client-side write buffer.
func (c *Client) Begin(ctx context.Context, opts ports.TxOptions) (ports.Transaction, error) {
	return newTx(c), nil
}

// Close closes the underlying redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) cacheKey(name string, key any) (string, error) {
	encoded, err := encodeKey(key)
	if err != nil {
		return "", err
	}
	return c.prefix + name + ":" + encoded, nil
}

// cache is a non-transactional handle to one named cache.
type cache struct {
	client     *Client
	name       string
	keepBinary bool
}

func (h *cache) Name() string {
	return h.name
}

func (h *cache) Get(ctx context.Context, key any) (*ports.Result, error) {
	k, err := h.client.cacheKey(h.name, key)
	if err != nil {
		return nil, err
	}
	data, err := h.client.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if err == backend.Nil {
			return ports.NewResult(), nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return ports.NewResult(ports.Entry{Key: key, Value: decodeValue(data, h.keepBinary)}), nil
}

func (h *cache) Put(ctx context.Context, key, value any) error {
	k, err := h.client.cacheKey(h.name, key)
	if err != nil {
		return err
	}
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	if err := h.client.rdb.Set(ctx, k, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (h *cache) Remove(ctx context.Context, key any) (bool, error) {
	k, err := h.client.cacheKey(h.name, key)
	if err != nil {
		return false, err
	}
	n, err := h.client.rdb.Del(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

func (h *cache) GetAndPut(ctx context.Context, key, value any) (*ports.Result, error) {
	k, err := h.client.cacheKey(h.name, key)
	if err != nil {
		return nil, err
	}
	data, err := encodeValue(value)
	if err != nil {
		return nil, err
	}
	prev, err := h.client.rdb.GetSet(ctx, k, data).Bytes()
	if err != nil {
		if err == backend.Nil {
			return ports.NewResult(), nil
		}
		return nil, fmt.Errorf("redis getset: %w", err)
	}
	return ports.NewResult(ports.Entry{Key: key, Value: decodeValue(prev, h.keepBinary)}), nil
}

func (h *cache) GetAndRemove(ctx context.Context, key any) (*ports.Result, error) {
	k, err := h.client.cacheKey(h.name, key)
	if err != nil {
		return nil, err
	}
	prev, err := h.client.rdb.GetDel(ctx, k).Bytes()
	if err != nil {
		if err == backend.Nil {
			return ports.NewResult(), nil
		}
		return nil, fmt.Errorf("redis getdel: %w", err)
	}
	return ports.NewResult(ports.Entry{Key: key, Value: decodeValue(prev, h.keepBinary)}), nil
}

// Lock acquires an explicit lock via SET NX, polling until the lock is held
// or the context is canceled. Release checks the stored value with a Lua
// script so a lock that expired and was re-acquired is never deleted by the
// previous holder.
func (h *cache) Lock(ctx context.Context, key any) (ports.UnlockFunc, error) {
	encoded, err := encodeKey(key)
	if err != nil {
		return nil, err
	}
	lockKey := h.client.prefix + "lock:" + h.name + ":" + encoded
	val := fmt.Sprintf("%d", time.Now().UnixNano())

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		success, err := h.client.rdb.SetNX(ctx, lockKey, val, h.client.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if success {
			return func(ctx context.Context) error {
				script := `
					if redis.call("get", KEYS[1]) == ARGV[1] then
						return redis.call("del", KEYS[1])
					else
						return 0
					end
				`
				return h.client.rdb.Eval(ctx, script, []string{lockKey}, val).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
