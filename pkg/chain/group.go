package chain

import (
	"context"
	"fmt"

	"github.com/aretw0/harrow/internal/logging"
	"github.com/aretw0/harrow/pkg/action"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// Group builds a named sub-chain. Members execute in order and are measured
// individually; a failure is attributed to the group by name.
func Group(name string, actions ...domain.Action) domain.Action {
	return &group{name: name, actions: actions}
}

type group struct {
	name    string
	actions []domain.Action
}

func (g *group) Name() string {
	return g.name
}

// Execute supports standalone use outside a chain; measurements go nowhere.
func (g *group) Execute(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	return g.executeWith(ctx, newNopDriver(), s)
}

func (g *group) executeWith(ctx context.Context, rt *driver, s *domain.Session) (*domain.Session, error) {
	next, err := rt.run(ctx, g.actions, s)
	if err != nil {
		return next, fmt.Errorf("group %q: %w", g.name, err)
	}
	return next, nil
}

// Transactional builds a transaction-scoped sub-chain: begin, body, close.
// The close runs on every exit path, so after the block the session's
// transaction slot is always empty. Writes are only applied when the body
// contains an explicit action.Commit.
func Transactional(opts ports.TxOptions, body ...domain.Action) domain.Action {
	return &scoped{opts: opts, body: body}
}

type scoped struct {
	opts ports.TxOptions
	body []domain.Action
}

func (t *scoped) Name() string {
	return "transaction"
}

// Execute supports standalone use outside a chain; measurements go nowhere.
func (t *scoped) Execute(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	return t.executeWith(ctx, newNopDriver(), s)
}

func (t *scoped) executeWith(ctx context.Context, rt *driver, s *domain.Session) (*domain.Session, error) {
	next, err := rt.execute(ctx, action.Begin(t.opts), s)
	if next == nil {
		next = s
	}
	if err != nil {
		return next, err
	}

	next, bodyErr := rt.run(ctx, t.body, next)

	// The body may have failed, been canceled, or closed the transaction
	// itself; the trailing close runs regardless and is a no-op in the
	// latter case.
	closed, closeErr := rt.execute(ctx, action.Close(), next)
	if closed != nil {
		next = closed
	}

	if bodyErr != nil {
		return next, bodyErr
	}
	return next, closeErr
}

func newNopDriver() *driver {
	return &driver{
		reporter: ports.NopReporter{},
		logger:   logging.NewNop(),
	}
}
