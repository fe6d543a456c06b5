package domain

import (
	"github.com/aretw0/harrow/pkg/ports"
)

// Session is the per-virtual-user state threaded through an action chain.
//
// A session is exclusively owned by its chain: no two actions of the same
// session execute concurrently. Mutators return a shallow copy instead of
// mutating in place, so a session value captured before an asynchronous
// operation stays valid when the chain resumes on another goroutine.
type Session struct {
	id            string
	client        ports.Client
	tx            ports.Transaction
	explicitLocks *bool
	vars          map[string]any
}

// NewSession creates a session bound to a client handle.
// The client is set once at scenario start and never replaced mid-chain.
func NewSession(id string, client ports.Client) *Session {
	return &Session{
		id:     id,
		client: client,
		vars:   make(map[string]any),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Client returns the active client handle, or nil if none was set.
func (s *Session) Client() ports.Client {
	if s == nil {
		return nil
	}
	return s.client
}

// Tx returns the ambient transaction and whether one is active.
func (s *Session) Tx() (ports.Transaction, bool) {
	if s == nil || s.tx == nil {
		return nil, false
	}
	return s.tx, true
}

// WithTx returns a copy of the session with tx as the ambient transaction.
func (s *Session) WithTx(tx ports.Transaction) *Session {
	next := s.clone()
	next.tx = tx
	return next
}

// WithoutTx returns a copy of the session with no ambient transaction.
func (s *Session) WithoutTx() *Session {
	next := s.clone()
	next.tx = nil
	return next
}

// ExplicitLocks reports the explicit-lock flag. The second return value is
// false while no locking API has run in this chain, true once the flag was
// set either way.
func (s *Session) ExplicitLocks() (value, set bool) {
	if s == nil || s.explicitLocks == nil {
		return false, false
	}
	return *s.explicitLocks, true
}

// WithExplicitLocks returns a copy of the session with the lock flag set.
func (s *Session) WithExplicitLocks(v bool) *Session {
	next := s.clone()
	next.explicitLocks = &v
	return next
}

// Var returns the saved value under name and whether it exists.
func (s *Session) Var(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.vars[name]
	return v, ok
}

// WithVar returns a copy of the session with value saved under name.
func (s *Session) WithVar(name string, value any) *Session {
	next := s.clone()
	next.vars = copyVars(s.vars)
	next.vars[name] = value
	return next
}

// WithoutVar returns a copy of the session with the named value removed.
func (s *Session) WithoutVar(name string) *Session {
	next := s.clone()
	next.vars = copyVars(s.vars)
	delete(next.vars, name)
	return next
}

func (s *Session) clone() *Session {
	next := *s
	return &next
}

func copyVars(vars map[string]any) map[string]any {
	next := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		next[k] = v
	}
	return next
}
