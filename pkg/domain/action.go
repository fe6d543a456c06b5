package domain

import "context"

// Action is the base unit of work in a chain.
//
// Execute resolves its required capabilities from the session, performs a
// single cache or transaction operation, applies its checks and returns the
// next session. On failure the returned error names the action and the cache
// or resource involved.
//
// An action that partially mutated state before failing (e.g. a transaction
// close that released the handle but reported an error) may return BOTH a
// non-nil session and a non-nil error; the driver adopts the session so later
// cleanup sees the applied mutation.
type Action interface {
	// Name is the request name used for reporting, e.g. "get users".
	Name() string

	// Execute runs the action against the session and returns the next one.
	Execute(ctx context.Context, s *Session) (*Session, error)
}
