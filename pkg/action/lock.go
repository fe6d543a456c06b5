package action

import (
	"context"
	"fmt"

	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// LockAction acquires or releases an explicit lock on a cache key.
type LockAction struct {
	cacheName string
	key       Expr
	release   bool
}

// Lock builds an action that acquires an explicit lock on key and records in
// the session that the locking API was used, which vetoes async mode for the
// rest of the chain segment.
func Lock(cacheName string, key Expr) *LockAction {
	return &LockAction{cacheName: cacheName, key: key}
}

// Unlock builds an action that releases a lock previously taken by Lock on
// the same cache and key.
func Unlock(cacheName string, key Expr) *LockAction {
	return &LockAction{cacheName: cacheName, key: key, release: true}
}

// Name returns the request name, e.g. "lock users".
func (a *LockAction) Name() string {
	if a.release {
		return "unlock " + a.cacheName
	}
	return "lock " + a.cacheName
}

// Execute acquires or releases the lock and updates the session.
func (a *LockAction) Execute(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	key, err := a.key(s)
	if err != nil {
		return nil, a.fail(fmt.Errorf("key: %w", err))
	}
	slot := fmt.Sprintf("lock:%s:%v", a.cacheName, key)

	if a.release {
		v, ok := s.Var(slot)
		if !ok {
			return nil, a.fail(fmt.Errorf("no lock held for key %v", key))
		}
		unlock := v.(ports.UnlockFunc)
		if err := unlock(ctx); err != nil {
			return nil, a.fail(err)
		}
		return s.WithoutVar(slot), nil
	}

	// Locks are a sync-only API, so the resolver runs with async off.
	p, err := Resolve(ctx, s, a.cacheName, false, false)
	if err != nil {
		return nil, a.fail(err)
	}
	unlock, err := p.Cache.Lock(ctx, key)
	if err != nil {
		return nil, a.fail(err)
	}
	return s.WithVar(slot, unlock).WithExplicitLocks(true), nil
}

func (a *LockAction) fail(err error) error {
	return fmt.Errorf("%s: %w", a.Name(), err)
}
