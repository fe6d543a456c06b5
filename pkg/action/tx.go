package action

import (
	"context"
	"fmt"

	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

type txKind string

const (
	txBegin    txKind = "tx begin"
	txCommit   txKind = "tx commit"
	txRollback txKind = "tx rollback"
	txClose    txKind = "tx close"
)

// TxAction is a transaction lifecycle step: begin, commit, rollback or close.
type TxAction struct {
	kind txKind
	opts ports.TxOptions
}

// Begin opens a new transaction and stores it in the session. A transaction
// that is still active at that point is closed first so it cannot leak.
func Begin(opts ports.TxOptions) *TxAction {
	return &TxAction{kind: txBegin, opts: opts}
}

// Commit applies the ambient transaction's writes. It fails when no
// transaction is active; the transaction stays in the session either way so a
// following Close can release it.
func Commit() *TxAction {
	return &TxAction{kind: txCommit}
}

// Rollback discards the ambient transaction's writes. It fails when no
// transaction is active.
func Rollback() *TxAction {
	return &TxAction{kind: txRollback}
}

// Close releases the ambient transaction and removes it from the session,
// even when the close itself fails. Closing when no transaction is active is
// an idempotent no-op that simply continues the chain.
func Close() *TxAction {
	return &TxAction{kind: txClose}
}

// Name returns the request name of the lifecycle step.
func (a *TxAction) Name() string {
	return string(a.kind)
}

// Execute advances the transaction lifecycle on the session.
func (a *TxAction) Execute(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	switch a.kind {
	case txBegin:
		return a.begin(ctx, s)
	case txCommit:
		return a.terminal(ctx, s, ports.Transaction.Commit)
	case txRollback:
		return a.terminal(ctx, s, ports.Transaction.Rollback)
	case txClose:
		return a.close(ctx, s)
	default:
		return nil, fmt.Errorf("unknown transaction action %q", a.kind)
	}
}

func (a *TxAction) begin(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	client := s.Client()
	if client == nil {
		return nil, a.fail(domain.ErrNoClient)
	}

	// A begun transaction must reach Close exactly once; an earlier one still
	// hanging on the session is released before it can leak.
	if prev, active := s.Tx(); active {
		if err := prev.Close(ctx); err != nil {
			return nil, a.fail(fmt.Errorf("closing previous transaction: %w", err))
		}
		s = s.WithoutTx()
	}

	tx, err := client.Begin(ctx, a.opts)
	if err != nil {
		return nil, a.fail(err)
	}
	return s.WithTx(tx), nil
}

func (a *TxAction) terminal(ctx context.Context, s *domain.Session, op func(ports.Transaction, context.Context) error) (*domain.Session, error) {
	tx, active := s.Tx()
	if !active {
		return nil, a.fail(domain.ErrNoTransaction)
	}
	if err := op(tx, ctx); err != nil {
		return nil, a.fail(err)
	}
	return s, nil
}

func (a *TxAction) close(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	tx, active := s.Tx()
	if !active {
		return s, nil
	}

	err := tx.Close(ctx)
	// The slot is cleared unconditionally: a failed close must not leave a
	// dangling handle in the session.
	next := s.WithoutTx()
	if err != nil {
		return next, a.fail(err)
	}
	return next, nil
}

func (a *TxAction) fail(err error) error {
	return fmt.Errorf("%s: %w", a.Name(), err)
}
