package memory_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/harrow/pkg/adapters/memory"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_Contract(t *testing.T) {
	ports.RunClientContract(t, func(t *testing.T) ports.Client {
		return memory.New()
	})
}

func TestMemoryClient_ClosedClient(t *testing.T) {
	client := memory.New()
	require.NoError(t, client.Close())

	_, err := client.Cache(context.Background(), "users", false)
	assert.ErrorIs(t, err, ports.ErrClientClosed)

	_, err = client.Begin(context.Background(), ports.TxOptions{})
	assert.ErrorIs(t, err, ports.ErrClientClosed)
}

func TestMemoryClient_TerminalTransitionIsExclusive(t *testing.T) {
	ctx := context.Background()
	client := memory.New()

	tx, err := client.Begin(ctx, ports.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.ErrorIs(t, tx.Rollback(ctx), ports.ErrTxClosed)
	assert.ErrorIs(t, tx.Commit(ctx), ports.ErrTxClosed)
	assert.NoError(t, tx.Close(ctx))
}

func TestMemoryClient_LockContention(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	cache, err := client.Cache(ctx, "users", false)
	require.NoError(t, err)

	unlock, err := cache.Lock(ctx, 1)
	require.NoError(t, err)

	// A second holder blocks until the context gives up.
	ctxTimeout, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = cache.Lock(ctxTimeout, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	// Released, so it can be taken again.
	unlock, err = cache.Lock(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestMemoryClient_CanceledWaitersLeaveNothingBehind(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	cache, err := client.Cache(ctx, "users", false)
	require.NoError(t, err)

	unlock, err := cache.Lock(ctx, 1)
	require.NoError(t, err)

	baseline := runtime.NumGoroutine()

	// Waiters that give up must not leave a goroutine parked on the lock.
	for i := 0; i < 20; i++ {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := cache.Lock(canceled, 1)
		assert.ErrorIs(t, err, context.Canceled)
	}

	assert.LessOrEqual(t, runtime.NumGoroutine(), baseline+1,
		"canceled waiters must not leak goroutines")

	// The holder's release was not consumed by any stale waiter.
	require.NoError(t, unlock(ctx))
	unlock, err = cache.Lock(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}
