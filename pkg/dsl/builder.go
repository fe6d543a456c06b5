package dsl

import (
	"strings"

	"github.com/aretw0/harrow/pkg/action"
	"github.com/aretw0/harrow/pkg/chain"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// Pipeline manages chain construction.
type Pipeline struct {
	name    string
	actions []domain.Action
}

// NewPipeline creates a new chain builder.
func NewPipeline(name string) *Pipeline {
	return &Pipeline{name: name}
}

// Get appends a read step.
func (p *Pipeline) Get(cache string, key any) *StepBuilder {
	return p.step(func(opts []action.Option) domain.Action {
		return action.Get(cache, expr(key), opts...)
	})
}

// Put appends a write step.
func (p *Pipeline) Put(cache string, key, value any) *StepBuilder {
	return p.step(func(opts []action.Option) domain.Action {
		return action.Put(cache, expr(key), expr(value), opts...)
	})
}

// Remove appends a delete step.
func (p *Pipeline) Remove(cache string, key any) *StepBuilder {
	return p.step(func(opts []action.Option) domain.Action {
		return action.Remove(cache, expr(key), opts...)
	})
}

// GetAndPut appends a swap step returning the previous value.
func (p *Pipeline) GetAndPut(cache string, key, value any) *StepBuilder {
	return p.step(func(opts []action.Option) domain.Action {
		return action.GetAndPut(cache, expr(key), expr(value), opts...)
	})
}

// GetAndRemove appends a take step returning the removed value.
func (p *Pipeline) GetAndRemove(cache string, key any) *StepBuilder {
	return p.step(func(opts []action.Option) domain.Action {
		return action.GetAndRemove(cache, expr(key), opts...)
	})
}

// Lock appends an explicit lock step. The session remembers the lock
// until the matching Unlock.
func (p *Pipeline) Lock(cache string, key any) *Pipeline {
	p.actions = append(p.actions, action.Lock(cache, expr(key)))
	return p
}

// Unlock appends the release for a previous Lock on the same key.
func (p *Pipeline) Unlock(cache string, key any) *Pipeline {
	p.actions = append(p.actions, action.Unlock(cache, expr(key)))
	return p
}

// Tx appends a transactional block. The body runs inside an ambient
// transaction that is closed when the block ends, commit or not.
func (p *Pipeline) Tx(opts ports.TxOptions, body func(tx *Pipeline)) *Pipeline {
	inner := NewPipeline(p.name)
	body(inner)
	p.actions = append(p.actions, chain.Transactional(opts, inner.actions...))
	return p
}

// Commit appends an explicit commit of the ambient transaction. Only
// meaningful inside a Tx block.
func (p *Pipeline) Commit() *Pipeline {
	p.actions = append(p.actions, action.Commit())
	return p
}

// Rollback appends an explicit rollback of the ambient transaction.
func (p *Pipeline) Rollback() *Pipeline {
	p.actions = append(p.actions, action.Rollback())
	return p
}

// Group appends a named group of steps measured as one unit and
// individually.
func (p *Pipeline) Group(name string, body func(g *Pipeline)) *Pipeline {
	inner := NewPipeline(name)
	body(inner)
	p.actions = append(p.actions, chain.Group(name, inner.actions...))
	return p
}

// Step appends a pre-built action for cases the fluent surface does
// not cover.
func (p *Pipeline) Step(a domain.Action) *Pipeline {
	p.actions = append(p.actions, a)
	return p
}

// Build compiles the pipeline into a runnable chain.
func (p *Pipeline) Build() *chain.Chain {
	return chain.New(p.name, p.actions...)
}

func (p *Pipeline) step(build func([]action.Option) domain.Action) *StepBuilder {
	sb := &StepBuilder{pipeline: p, build: build}
	p.actions = append(p.actions, sb.placeholder())
	sb.slot = len(p.actions) - 1
	return sb
}

// expr maps a DSL scalar to an action expression. Strings of the form
// ${name} resolve against the session at execution time, and an
// action.Expr passes through untouched.
func expr(v any) action.Expr {
	switch t := v.(type) {
	case action.Expr:
		return t
	case string:
		if strings.HasPrefix(t, "${") && strings.HasSuffix(t, "}") && len(t) > 3 {
			return action.FromVar(t[2 : len(t)-1])
		}
	}
	return action.Lit(v)
}
