package chain

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/harrow/internal/logging"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// Chain is an ordered list of actions executed as one scenario.
type Chain struct {
	name     string
	actions  []domain.Action
	reporter ports.Reporter
	hooks    domain.Hooks
	logger   *slog.Logger
}

// New builds a chain from actions in execution order.
func New(name string, actions ...domain.Action) *Chain {
	return &Chain{
		name:     name,
		actions:  actions,
		reporter: ports.NopReporter{},
		logger:   logging.NewNop(),
	}
}

// Name returns the scenario name of the chain.
func (c *Chain) Name() string {
	return c.name
}

// WithReporter sets the per-action measurement sink.
func (c *Chain) WithReporter(r ports.Reporter) *Chain {
	c.reporter = r
	return c
}

// WithHooks registers observability callbacks.
func (c *Chain) WithHooks(h domain.Hooks) *Chain {
	c.hooks = h
	return c
}

// WithLogger sets a structured logger for action failures.
func (c *Chain) WithLogger(logger *slog.Logger) *Chain {
	c.logger = logger
	return c
}

// Run executes the chain, threading the session through each action.
// It returns the final session, which on failure reflects every mutation
// applied up to and including the failing action's cleanup.
func (c *Chain) Run(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	rt := &driver{
		reporter: c.reporter,
		hooks:    c.hooks,
		logger:   c.logger,
	}
	return rt.run(ctx, c.actions, s)
}

// driver owns reporting and hooks so nested composites measure their members
// exactly like top-level actions.
type driver struct {
	reporter ports.Reporter
	hooks    domain.Hooks
	logger   *slog.Logger
}

// composite is implemented by actions that carry sub-chains and need the
// driver to report their members individually.
type composite interface {
	executeWith(ctx context.Context, rt *driver, s *domain.Session) (*domain.Session, error)
}

func (rt *driver) run(ctx context.Context, actions []domain.Action, s *domain.Session) (*domain.Session, error) {
	for _, a := range actions {
		select {
		case <-ctx.Done():
			// Abandoned by the harness; no compensation beyond the
			// transaction-close discipline of enclosing scopes.
			return s, ctx.Err()
		default:
		}

		next, err := rt.execute(ctx, a, s)
		if next != nil {
			s = next
		}
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func (rt *driver) execute(ctx context.Context, a domain.Action, s *domain.Session) (*domain.Session, error) {
	if comp, ok := a.(composite); ok {
		return comp.executeWith(ctx, rt, s)
	}

	start := time.Now()
	ev := &domain.ActionEvent{SessionID: s.ID(), Action: a.Name(), Start: start}
	if rt.hooks.OnActionStart != nil {
		rt.hooks.OnActionStart(ctx, ev)
	}

	next, err := a.Execute(ctx, s)
	duration := time.Since(start)

	rt.reporter.Report(ctx, ports.Measurement{
		Name:     a.Name(),
		Start:    start,
		Duration: duration,
		Err:      err,
	})

	ev.Duration = duration
	ev.Err = err
	if rt.hooks.OnActionEnd != nil {
		rt.hooks.OnActionEnd(ctx, ev)
	}

	if err != nil {
		rt.logger.WarnContext(ctx, "action failed",
			"action", a.Name(),
			"session_id", s.ID(),
			"err", err,
		)
	}
	return next, err
}
