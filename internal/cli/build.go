package cli

import (
	"fmt"

	"github.com/aretw0/harrow/pkg/action"
	"github.com/aretw0/harrow/pkg/chain"
	"github.com/aretw0/harrow/pkg/check"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/aretw0/harrow/pkg/registry"
)

// BuildOption configures scenario assembly.
type BuildOption func(*builder)

// WithRegistry makes host-defined check types available to the
// scenario's check entries.
func WithRegistry(r *registry.Registry) BuildOption {
	return func(b *builder) {
		b.registry = r
	}
}

type builder struct {
	defaults Defaults
	registry *registry.Registry
}

// Build assembles a scenario into a runnable chain.
func Build(scenario *Scenario, opts ...BuildOption) (*chain.Chain, error) {
	b := &builder{defaults: scenario.Defaults}
	for _, opt := range opts {
		opt(b)
	}
	actions, err := b.buildActions(scenario.Steps)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	return chain.New(scenario.Name, actions...), nil
}

func (b *builder) buildActions(steps []Step) ([]domain.Action, error) {
	actions := make([]domain.Action, 0, len(steps))
	for i, step := range steps {
		a, err := b.buildStep(step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func (b *builder) buildStep(step Step) (domain.Action, error) {
	switch {
	case step.Tx != nil:
		return b.buildTx(step.Tx)
	case step.Group != nil:
		return b.buildGroup(step.Group)
	default:
		return b.buildOp(step)
	}
}

func (b *builder) buildTx(cfg *TxConfig) (domain.Action, error) {
	opts, err := txOptions(cfg)
	if err != nil {
		return nil, err
	}
	steps, err := decodeSteps(cfg.Steps, b.defaults)
	if err != nil {
		return nil, err
	}
	body, err := b.buildActions(steps)
	if err != nil {
		return nil, err
	}
	return chain.Transactional(opts, body...), nil
}

func txOptions(cfg *TxConfig) (ports.TxOptions, error) {
	opts := ports.TxOptions{
		Concurrency: ports.TxPessimistic,
		Isolation:   ports.TxRepeatableRead,
	}
	switch cfg.Concurrency {
	case "":
	case string(ports.TxOptimistic):
		opts.Concurrency = ports.TxOptimistic
	case string(ports.TxPessimistic):
		opts.Concurrency = ports.TxPessimistic
	default:
		return opts, fmt.Errorf("unknown tx concurrency %q", cfg.Concurrency)
	}
	switch cfg.Isolation {
	case "":
	case string(ports.TxReadCommitted):
		opts.Isolation = ports.TxReadCommitted
	case string(ports.TxRepeatableRead):
		opts.Isolation = ports.TxRepeatableRead
	case string(ports.TxSerializable):
		opts.Isolation = ports.TxSerializable
	default:
		return opts, fmt.Errorf("unknown tx isolation %q", cfg.Isolation)
	}
	return opts, nil
}

func (b *builder) buildGroup(cfg *GroupConfig) (domain.Action, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("group needs a name")
	}
	steps, err := decodeSteps(cfg.Steps, b.defaults)
	if err != nil {
		return nil, err
	}
	body, err := b.buildActions(steps)
	if err != nil {
		return nil, err
	}
	return chain.Group(cfg.Name, body...), nil
}

func (b *builder) buildOp(step Step) (domain.Action, error) {
	// Transaction verbs act on the ambient transaction, not a cache.
	switch step.Op {
	case "commit":
		return action.Commit(), nil
	case "rollback":
		return action.Rollback(), nil
	}

	if step.Cache == "" {
		return nil, fmt.Errorf("op %q needs a cache", step.Op)
	}

	switch step.Op {
	case "lock":
		return action.Lock(step.Cache, expr(step.Key)), nil
	case "unlock":
		return action.Unlock(step.Cache, expr(step.Key)), nil
	}

	opts, err := b.opOptions(step)
	if err != nil {
		return nil, err
	}

	switch step.Op {
	case "get":
		return action.Get(step.Cache, expr(step.Key), opts...), nil
	case "put":
		return action.Put(step.Cache, expr(step.Key), expr(step.Value), opts...), nil
	case "remove":
		return action.Remove(step.Cache, expr(step.Key), opts...), nil
	case "getAndPut":
		return action.GetAndPut(step.Cache, expr(step.Key), expr(step.Value), opts...), nil
	case "getAndRemove":
		return action.GetAndRemove(step.Cache, expr(step.Key), opts...), nil
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func (b *builder) opOptions(step Step) ([]action.Option, error) {
	var opts []action.Option
	if step.Async {
		opts = append(opts, action.Async())
	}
	if step.KeepBinary {
		opts = append(opts, action.KeepBinary())
	}
	if step.Name != "" {
		opts = append(opts, action.WithName(step.Name))
	}
	for _, c := range step.Checks {
		built, err := b.buildCheck(c)
		if err != nil {
			return nil, err
		}
		opts = append(opts, action.WithChecks(built))
	}
	return opts, nil
}

func (b *builder) buildCheck(cfg CheckConfig) (check.Check, error) {
	switch cfg.Type {
	case "count":
		return check.Count().Is(cfg.Count), nil
	case "count_gt":
		return check.Count().Gt(cfg.Count), nil
	case "exists":
		return check.Exists(cfg.Key), nil
	case "not_exists":
		return check.NotExists(cfg.Key), nil
	case "equals":
		return projection(cfg).Is(cfg.Value), nil
	case "save_as":
		if cfg.SaveAs == "" {
			return check.Check{}, fmt.Errorf("save_as check needs save_as name")
		}
		return projection(cfg).SaveAs(cfg.SaveAs), nil
	default:
		if b.registry != nil {
			return b.registry.Resolve(cfg.Type, cfg.Args)
		}
		return check.Check{}, fmt.Errorf("unknown check type %q", cfg.Type)
	}
}

func projection(cfg CheckConfig) *check.Projection {
	if cfg.Key != nil {
		return check.Entry(cfg.Key)
	}
	return check.Single()
}

// expr maps a scenario scalar to an action expression. ${name} strings
// resolve against the session at execution time.
func expr(v any) action.Expr {
	if name, ok := varRef(v); ok {
		return action.FromVar(name)
	}
	return action.Lit(v)
}
