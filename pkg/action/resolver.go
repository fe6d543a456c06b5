package action

import (
	"context"
	"fmt"

	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// Params holds the capabilities resolved for one action execution.
type Params struct {
	// Cache is the concrete handle the operation runs against. When Tx is
	// set, the handle is bound to that transaction.
	Cache ports.Cache

	// Tx is the ambient transaction, or nil when running outside one.
	Tx ports.Transaction
}

// Resolve extracts the capabilities an action needs from the session.
//
// Rules, applied in order:
//  1. A session without a client handle fails with domain.ErrNoClient.
//  2. Async combined with an active transaction or explicit locks fails with
//     domain.ErrAsyncUnsafe. Transaction-activeness is dynamic, so this is
//     checked here at execution time, not at build time.
//  3. Otherwise the cache handle is resolved by name: from the transaction
//     when one is active (ambient transaction), from the client otherwise.
//
// On failure no operation is attempted and the session is left untouched.
func Resolve(ctx context.Context, s *domain.Session, cacheName string, keepBinary, async bool) (Params, error) {
	client := s.Client()
	if client == nil {
		return Params{}, domain.ErrNoClient
	}

	tx, inTx := s.Tx()
	locked, _ := s.ExplicitLocks()
	if async && (inTx || locked) {
		return Params{}, domain.ErrAsyncUnsafe
	}

	if inTx {
		cache, err := tx.Cache(ctx, cacheName, keepBinary)
		if err != nil {
			return Params{}, fmt.Errorf("resolving cache %q in transaction: %w", cacheName, err)
		}
		return Params{Cache: cache, Tx: tx}, nil
	}

	cache, err := client.Cache(ctx, cacheName, keepBinary)
	if err != nil {
		return Params{}, fmt.Errorf("resolving cache %q: %w", cacheName, err)
	}
	return Params{Cache: cache}, nil
}
