package action

import (
	"context"
	"fmt"

	"github.com/aretw0/harrow/pkg/check"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// Verb identifies a cache operation.
type Verb string

const (
	VerbGet          Verb = "get"
	VerbPut          Verb = "put"
	VerbRemove       Verb = "remove"
	VerbGetAndPut    Verb = "getAndPut"
	VerbGetAndRemove Verb = "getAndRemove"
)

// CacheAction is a single cache operation plus its check pipeline.
// Build one with Get, Put, Remove, GetAndPut or GetAndRemove.
type CacheAction struct {
	verb      Verb
	cacheName string
	key       Expr
	value     Expr

	async      bool
	keepBinary bool
	name       string
	checks     []check.Check
}

// Option configures a CacheAction.
type Option func(*CacheAction)

// Async runs the operation through the async API. Resolution fails when a
// transaction is active or explicit locks were taken.
func Async() Option {
	return func(a *CacheAction) {
		a.async = true
	}
}

// KeepBinary resolves the cache in keep-binary mode: values pass through
// without decoding.
func KeepBinary() Option {
	return func(a *CacheAction) {
		a.keepBinary = true
	}
}

// WithName overrides the auto-generated request name.
func WithName(name string) Option {
	return func(a *CacheAction) {
		a.name = name
	}
}

// WithChecks appends checks to the action's pipeline.
func WithChecks(checks ...check.Check) Option {
	return func(a *CacheAction) {
		a.checks = append(a.checks, checks...)
	}
}

func newCacheAction(verb Verb, cacheName string, key, value Expr, opts []Option) *CacheAction {
	a := &CacheAction{
		verb:      verb,
		cacheName: cacheName,
		key:       key,
		value:     value,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Get builds a lookup action.
func Get(cacheName string, key Expr, opts ...Option) *CacheAction {
	return newCacheAction(VerbGet, cacheName, key, nil, opts)
}

// Put builds a store action.
func Put(cacheName string, key, value Expr, opts ...Option) *CacheAction {
	return newCacheAction(VerbPut, cacheName, key, value, opts)
}

// Remove builds a delete action.
func Remove(cacheName string, key Expr, opts ...Option) *CacheAction {
	return newCacheAction(VerbRemove, cacheName, key, nil, opts)
}

// GetAndPut builds a store action that yields the previous entry.
func GetAndPut(cacheName string, key, value Expr, opts ...Option) *CacheAction {
	return newCacheAction(VerbGetAndPut, cacheName, key, value, opts)
}

// GetAndRemove builds a delete action that yields the removed entry.
func GetAndRemove(cacheName string, key Expr, opts ...Option) *CacheAction {
	return newCacheAction(VerbGetAndRemove, cacheName, key, nil, opts)
}

// Name returns the request name, auto-generated as "<verb> <cacheName>"
// when not overridden.
func (a *CacheAction) Name() string {
	if a.name != "" {
		return a.name
	}
	return string(a.verb) + " " + a.cacheName
}

// Execute resolves capabilities, performs the operation and runs the checks.
func (a *CacheAction) Execute(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	p, err := Resolve(ctx, s, a.cacheName, a.keepBinary, a.async)
	if err != nil {
		return nil, a.fail(err)
	}

	key, err := a.key(s)
	if err != nil {
		return nil, a.fail(fmt.Errorf("key: %w", err))
	}
	var value any
	if a.value != nil {
		value, err = a.value(s)
		if err != nil {
			return nil, a.fail(fmt.Errorf("value: %w", err))
		}
	}

	res, err := a.invoke(ctx, p.Cache, key, value)
	if err != nil {
		return nil, a.fail(err)
	}

	next, err := check.Run(a.checks, res, s)
	if err != nil {
		// Session is not updated with partial results on a failed action.
		return nil, a.fail(err)
	}
	return next, nil
}

// invoke performs the single underlying cache call. In async mode the call is
// issued on its own goroutine and the chain suspends until completion, so
// ordering within the chain is still issuance order.
func (a *CacheAction) invoke(ctx context.Context, cache ports.Cache, key, value any) (*ports.Result, error) {
	op := func() (*ports.Result, error) {
		switch a.verb {
		case VerbGet:
			return cache.Get(ctx, key)
		case VerbPut:
			return ports.NewResult(), cache.Put(ctx, key, value)
		case VerbRemove:
			_, err := cache.Remove(ctx, key)
			return ports.NewResult(), err
		case VerbGetAndPut:
			return cache.GetAndPut(ctx, key, value)
		case VerbGetAndRemove:
			return cache.GetAndRemove(ctx, key)
		default:
			return nil, fmt.Errorf("unknown cache verb %q", a.verb)
		}
	}

	if !a.async {
		return op()
	}

	type outcome struct {
		res *ports.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := op()
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		// Abandoned: the eventual result is discarded.
		return nil, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}

func (a *CacheAction) fail(err error) error {
	return fmt.Errorf("%s: %w", a.Name(), err)
}
