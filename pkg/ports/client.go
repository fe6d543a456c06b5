package ports

import (
	"context"
	"errors"
)

// ErrClientClosed is returned by handle lookups after the client was closed.
var ErrClientClosed = errors.New("client is closed")

// ErrTxClosed is returned when commit or rollback is attempted on a
// transaction that already reached a terminal state.
var ErrTxClosed = errors.New("transaction already closed")

// TxConcurrency selects the concurrency control mode of a transaction.
type TxConcurrency string

const (
	TxOptimistic  TxConcurrency = "optimistic"
	TxPessimistic TxConcurrency = "pessimistic"
)

// TxIsolation selects the isolation level of a transaction.
type TxIsolation string

const (
	TxReadCommitted  TxIsolation = "read_committed"
	TxRepeatableRead TxIsolation = "repeatable_read"
	TxSerializable   TxIsolation = "serializable"
)

// TxOptions is the static transaction descriptor. Adapters translate it to
// whatever the underlying store supports; adapters that cannot honor a mode
// must say so in their documentation rather than silently downgrade.
type TxOptions struct {
	Concurrency TxConcurrency
	Isolation   TxIsolation
}

// UnlockFunc releases an explicit cache lock.
// It MUST be called exactly once for every successful Lock.
type UnlockFunc func(ctx context.Context) error

// Client is the top-level capability handle to a cache cluster.
// Implementations must be safe for concurrent use: many sessions share one
// Client while each session owns its own Transaction handles.
type Client interface {
	// Cache resolves a cache handle by name. With keepBinary set, values are
	// passed through without decoding.
	Cache(ctx context.Context, name string, keepBinary bool) (Cache, error)

	// Begin opens a new transaction. The returned handle is exclusively owned
	// by the calling session and must not be shared.
	Begin(ctx context.Context, opts TxOptions) (Transaction, error)

	// Close releases the client and its underlying connections.
	Close() error
}

// Cache is a handle to a single named cache.
type Cache interface {
	// Name returns the cache name the handle was resolved with.
	Name() string

	// Get returns the entry for key, or an empty Result on a miss.
	// A miss is an absent entry, never an entry with a nil value.
	Get(ctx context.Context, key any) (*Result, error)

	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key, value any) error

	// Remove deletes the entry for key. It reports whether an entry existed.
	Remove(ctx context.Context, key any) (bool, error)

	// GetAndPut stores value under key and returns the previous entry,
	// or an empty Result if the key was absent.
	GetAndPut(ctx context.Context, key, value any) (*Result, error)

	// GetAndRemove deletes the entry for key and returns it,
	// or an empty Result if the key was absent.
	GetAndRemove(ctx context.Context, key any) (*Result, error)

	// Lock acquires an explicit lock on key, blocking until it is held or the
	// context is canceled. The returned UnlockFunc releases it.
	Lock(ctx context.Context, key any) (UnlockFunc, error)
}

// Transaction is an exclusive, single-session transaction handle.
//
// Lifecycle: Begin -> exactly one of Commit or Rollback (optional) -> Close.
// Close is idempotent and must release the handle even when no terminal
// operation ran; uncommitted writes are discarded on Close.
type Transaction interface {
	// Cache resolves a cache handle whose operations run inside this
	// transaction.
	Cache(ctx context.Context, name string, keepBinary bool) (Cache, error)

	// Commit applies all buffered writes atomically.
	Commit(ctx context.Context) error

	// Rollback discards all buffered writes.
	Rollback(ctx context.Context) error

	// Close releases the transaction. If neither Commit nor Rollback ran,
	// buffered writes are discarded. Closing twice is not an error.
	Close(ctx context.Context) error
}
