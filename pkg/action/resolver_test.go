package action_test

import (
	"context"
	"testing"

	"github.com/aretw0/harrow/pkg/action"
	"github.com/aretw0/harrow/pkg/adapters/memory"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoClient(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", nil)

	_, err := action.Resolve(ctx, sess, "users", false, false)
	assert.ErrorIs(t, err, domain.ErrNoClient)
}

func TestResolve_AsyncMutualExclusion(t *testing.T) {
	ctx := context.Background()
	client := memory.New()

	t.Run("async inside transaction", func(t *testing.T) {
		tx, err := client.Begin(ctx, ports.TxOptions{})
		require.NoError(t, err)
		sess := domain.NewSession("vu-1", client).WithTx(tx)

		_, err = action.Resolve(ctx, sess, "users", false, true)
		assert.ErrorIs(t, err, domain.ErrAsyncUnsafe)
	})

	t.Run("async with explicit locks", func(t *testing.T) {
		sess := domain.NewSession("vu-1", client).WithExplicitLocks(true)

		_, err := action.Resolve(ctx, sess, "users", false, true)
		assert.ErrorIs(t, err, domain.ErrAsyncUnsafe)
	})

	t.Run("async otherwise allowed", func(t *testing.T) {
		sess := domain.NewSession("vu-1", client)

		p, err := action.Resolve(ctx, sess, "users", false, true)
		require.NoError(t, err)
		assert.NotNil(t, p.Cache)
		assert.Nil(t, p.Tx)
	})

	t.Run("sync inside transaction allowed", func(t *testing.T) {
		tx, err := client.Begin(ctx, ports.TxOptions{})
		require.NoError(t, err)
		sess := domain.NewSession("vu-1", client).WithTx(tx)

		p, err := action.Resolve(ctx, sess, "users", false, false)
		require.NoError(t, err)
		assert.Equal(t, tx, p.Tx)
	})
}

func TestResolve_AmbientTransactionPairing(t *testing.T) {
	// A resolved handle inside a transaction sees that transaction's writes.
	ctx := context.Background()
	client := memory.New()
	tx, err := client.Begin(ctx, ports.TxOptions{})
	require.NoError(t, err)

	txCache, err := tx.Cache(ctx, "users", false)
	require.NoError(t, err)
	require.NoError(t, txCache.Put(ctx, 1, "buffered"))

	sess := domain.NewSession("vu-1", client).WithTx(tx)
	p, err := action.Resolve(ctx, sess, "users", false, false)
	require.NoError(t, err)

	res, err := p.Cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())
}

func TestResolve_CacheLookupFailure(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	require.NoError(t, client.Close())

	sess := domain.NewSession("vu-1", client)
	_, err := action.Resolve(ctx, sess, "users", false, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrClientClosed)
	assert.ErrorContains(t, err, `resolving cache "users"`)
}
