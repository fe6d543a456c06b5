package action_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/harrow/pkg/action"
	"github.com/aretw0/harrow/pkg/adapters/memory"
	"github.com/aretw0/harrow/pkg/check"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxAction_BeginCommitClose(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", memory.New())

	sess, err := action.Begin(ports.TxOptions{Concurrency: ports.TxOptimistic}).Execute(ctx, sess)
	require.NoError(t, err)
	_, active := sess.Tx()
	require.True(t, active)

	sess, err = action.Put("accounts", action.Lit(1), action.Lit(2)).Execute(ctx, sess)
	require.NoError(t, err)

	sess, err = action.Commit().Execute(ctx, sess)
	require.NoError(t, err)
	sess, err = action.Close().Execute(ctx, sess)
	require.NoError(t, err)

	_, active = sess.Tx()
	assert.False(t, active)

	// Committed write is visible outside the transaction.
	_, err = action.Get("accounts", action.Lit(1), action.WithChecks(
		check.Entry(1).Is(2),
	)).Execute(ctx, sess)
	assert.NoError(t, err)
}

func TestTxAction_CloseWithoutCommitDiscards(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", memory.New())

	sess, err := action.Begin(ports.TxOptions{}).Execute(ctx, sess)
	require.NoError(t, err)
	sess, err = action.Put("accounts", action.Lit(1), action.Lit(2)).Execute(ctx, sess)
	require.NoError(t, err)
	sess, err = action.Close().Execute(ctx, sess)
	require.NoError(t, err)

	// Uncommitted writes are not visible after close.
	_, err = action.Get("accounts", action.Lit(1), action.WithChecks(
		check.Count().Is(0),
		check.NotExists(1),
	)).Execute(ctx, sess)
	assert.NoError(t, err)
}

func TestTxAction_CloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", memory.New())

	// Closing with nothing begun continues the chain.
	next, err := action.Close().Execute(ctx, sess)
	require.NoError(t, err)
	require.NotNil(t, next)

	// Begin, close, close again: same outcome as a single close.
	sess, err = action.Begin(ports.TxOptions{}).Execute(ctx, sess)
	require.NoError(t, err)
	sess, err = action.Close().Execute(ctx, sess)
	require.NoError(t, err)
	sess, err = action.Close().Execute(ctx, sess)
	require.NoError(t, err)
	_, active := sess.Tx()
	assert.False(t, active)
}

func TestTxAction_CommitWithoutTransaction(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", memory.New())

	_, err := action.Commit().Execute(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrNoTransaction)

	_, err = action.Rollback().Execute(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrNoTransaction)
}

func TestTxAction_BeginClosesPreviousTransaction(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	sess := domain.NewSession("vu-1", client)

	sess, err := action.Begin(ports.TxOptions{}).Execute(ctx, sess)
	require.NoError(t, err)
	first, _ := sess.Tx()

	sess, err = action.Begin(ports.TxOptions{}).Execute(ctx, sess)
	require.NoError(t, err)
	second, _ := sess.Tx()
	require.NotEqual(t, first, second)

	// The first transaction was closed, not leaked.
	assert.ErrorIs(t, first.Commit(ctx), ports.ErrTxClosed)
}

// failingTx closes with an error to verify the session slot is still cleared.
type failingTx struct {
	ports.Transaction
}

var errCloseBroken = errors.New("connection dropped")

func (failingTx) Close(context.Context) error { return errCloseBroken }

func TestTxAction_FailedCloseStillClearsSession(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", memory.New()).WithTx(failingTx{})

	next, err := action.Close().Execute(ctx, sess)
	require.ErrorIs(t, err, errCloseBroken)
	require.NotNil(t, next, "cleanup session must be returned alongside the error")
	_, active := next.Tx()
	assert.False(t, active, "a failed close must not leave a dangling handle")
}

func TestTxAction_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", memory.New())

	sess, err := action.Begin(ports.TxOptions{}).Execute(ctx, sess)
	require.NoError(t, err)
	sess, err = action.Put("accounts", action.Lit(7), action.Lit("x")).Execute(ctx, sess)
	require.NoError(t, err)
	sess, err = action.Rollback().Execute(ctx, sess)
	require.NoError(t, err)
	sess, err = action.Close().Execute(ctx, sess)
	require.NoError(t, err)

	_, err = action.Get("accounts", action.Lit(7), action.WithChecks(
		check.NotExists(7),
	)).Execute(ctx, sess)
	assert.NoError(t, err)
}

func TestLockAction_SetsFlagAndReleases(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", memory.New())

	sess, err := action.Lock("users", action.Lit(1)).Execute(ctx, sess)
	require.NoError(t, err)

	locked, set := sess.ExplicitLocks()
	assert.True(t, set)
	assert.True(t, locked)

	// Async is vetoed for the rest of the chain segment.
	_, err = action.Get("users", action.Lit(1), action.Async()).Execute(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrAsyncUnsafe)

	sess, err = action.Unlock("users", action.Lit(1)).Execute(ctx, sess)
	require.NoError(t, err)

	// Releasing the lock does not reset the flag.
	locked, set = sess.ExplicitLocks()
	assert.True(t, set)
	assert.True(t, locked)
}

func TestLockAction_UnlockWithoutLock(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSession("vu-1", memory.New())

	_, err := action.Unlock("users", action.Lit(1)).Execute(ctx, sess)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no lock held")
}
