package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunClientContract runs a suite of tests to verify that a Client
// implementation adheres to the semantics the engine depends on.
// newClient must return a fresh, empty client per call.
func RunClientContract(t *testing.T, newClient func(t *testing.T) Client) {
	ctx := context.Background()

	t.Run("Put then Get", func(t *testing.T) {
		client := newClient(t)
		cache, err := client.Cache(ctx, "users", false)
		require.NoError(t, err)

		require.NoError(t, cache.Put(ctx, 1, "alice"))

		res, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Len())
		val, ok := res.Get(1)
		assert.True(t, ok)
		assert.Equal(t, "alice", val)
	})

	t.Run("Numeric Values Round-Trip", func(t *testing.T) {
		client := newClient(t)
		cache, err := client.Cache(ctx, "counters", false)
		require.NoError(t, err)

		// Stored numbers must read back as the same value and type,
		// whatever the adapter's wire encoding.
		require.NoError(t, cache.Put(ctx, 1, 42))
		res, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, 1, res.Len())
		val, ok := res.Get(1)
		assert.True(t, ok)
		assert.Equal(t, 42, val)

		require.NoError(t, cache.Put(ctx, 2, map[string]any{"count": 7, "ratio": 0.5}))
		res, err = cache.Get(ctx, 2)
		require.NoError(t, err)
		val, ok = res.Get(2)
		assert.True(t, ok)
		assert.Equal(t, map[string]any{"count": 7, "ratio": 0.5}, val)
	})

	t.Run("Get Miss", func(t *testing.T) {
		client := newClient(t)
		cache, err := client.Cache(ctx, "users", false)
		require.NoError(t, err)

		res, err := cache.Get(ctx, 404)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len(), "a miss must yield no entry, not a nil value")
		_, ok := res.Get(404)
		assert.False(t, ok)
	})

	t.Run("Remove then Get", func(t *testing.T) {
		client := newClient(t)
		cache, err := client.Cache(ctx, "users", false)
		require.NoError(t, err)

		require.NoError(t, cache.Put(ctx, 1, "alice"))

		removed, err := cache.Remove(ctx, 1)
		require.NoError(t, err)
		assert.True(t, removed)

		res, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len())

		// Removing an absent key is not an error.
		removed, err = cache.Remove(ctx, 1)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("GetAndPut on Absent Key", func(t *testing.T) {
		client := newClient(t)
		cache, err := client.Cache(ctx, "users", false)
		require.NoError(t, err)

		prev, err := cache.GetAndPut(ctx, 1, "bob")
		require.NoError(t, err)
		assert.Equal(t, 0, prev.Len(), "no previous value expected")

		res, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Len())
		val, _ := res.Get(1)
		assert.Equal(t, "bob", val)
	})

	t.Run("GetAndRemove on Present Key", func(t *testing.T) {
		client := newClient(t)
		cache, err := client.Cache(ctx, "users", false)
		require.NoError(t, err)

		require.NoError(t, cache.Put(ctx, 1, "carol"))

		prev, err := cache.GetAndRemove(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, 1, prev.Len())
		val, _ := prev.Get(1)
		assert.Equal(t, "carol", val)

		res, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len())
	})

	t.Run("Uncommitted Writes Invisible", func(t *testing.T) {
		client := newClient(t)
		tx, err := client.Begin(ctx, TxOptions{Concurrency: TxOptimistic, Isolation: TxRepeatableRead})
		require.NoError(t, err)

		txCache, err := tx.Cache(ctx, "accounts", false)
		require.NoError(t, err)
		require.NoError(t, txCache.Put(ctx, 1, 2))

		// The transaction sees its own write.
		res, err := txCache.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Len())

		// Outside the transaction the write is not visible yet.
		cache, err := client.Cache(ctx, "accounts", false)
		require.NoError(t, err)
		res, err = cache.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len())

		require.NoError(t, tx.Commit(ctx))
		require.NoError(t, tx.Close(ctx))

		res, err = cache.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Len())
	})

	t.Run("Close Without Commit Discards", func(t *testing.T) {
		client := newClient(t)
		tx, err := client.Begin(ctx, TxOptions{})
		require.NoError(t, err)

		txCache, err := tx.Cache(ctx, "accounts", false)
		require.NoError(t, err)
		require.NoError(t, txCache.Put(ctx, 1, 2))
		require.NoError(t, tx.Close(ctx))

		cache, err := client.Cache(ctx, "accounts", false)
		require.NoError(t, err)
		res, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len(), "close without commit must discard writes")
	})

	t.Run("Rollback Discards", func(t *testing.T) {
		client := newClient(t)
		tx, err := client.Begin(ctx, TxOptions{})
		require.NoError(t, err)

		txCache, err := tx.Cache(ctx, "accounts", false)
		require.NoError(t, err)
		require.NoError(t, txCache.Put(ctx, 7, "x"))
		require.NoError(t, tx.Rollback(ctx))
		require.NoError(t, tx.Close(ctx))

		cache, err := client.Cache(ctx, "accounts", false)
		require.NoError(t, err)
		res, err := cache.Get(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len())
	})

	t.Run("Close Is Idempotent", func(t *testing.T) {
		client := newClient(t)
		tx, err := client.Begin(ctx, TxOptions{})
		require.NoError(t, err)

		require.NoError(t, tx.Close(ctx))
		require.NoError(t, tx.Close(ctx), "closing twice must not fail")
	})

	t.Run("Lock and Unlock", func(t *testing.T) {
		client := newClient(t)
		cache, err := client.Cache(ctx, "users", false)
		require.NoError(t, err)

		unlock, err := cache.Lock(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		require.NoError(t, unlock(ctx))

		// The key is lockable again after release.
		unlock, err = cache.Lock(ctx, 1)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})
}
