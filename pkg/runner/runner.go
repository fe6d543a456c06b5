package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/harrow/internal/logging"
	"github.com/aretw0/harrow/pkg/chain"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// ClientFactory produces a client for a single virtual user. Each user
// owns its client for the whole run and the runner closes it when the
// user finishes.
type ClientFactory func(ctx context.Context) (ports.Client, error)

// Runner drives a chain through a population of concurrent virtual
// users. Every user runs the chain a fixed number of iterations, each
// iteration on a fresh session.
type Runner struct {
	chain   *chain.Chain
	factory ClientFactory

	users      int
	iterations int
	pace       time.Duration
	logger     *slog.Logger
}

// New creates a Runner for the given chain and client factory.
// Defaults to a single user and a single iteration.
func New(c *chain.Chain, factory ClientFactory, opts ...Option) *Runner {
	r := &Runner{
		chain:      c,
		factory:    factory,
		users:      1,
		iterations: 1,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts all virtual users and blocks until every user has
// finished or the context is cancelled. A cancelled context abandons
// pending iterations; iterations already in flight finish their
// current action before stopping.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	if r.chain == nil {
		return nil, errors.New("runner has no chain")
	}
	if r.factory == nil {
		return nil, errors.New("runner has no client factory")
	}

	start := time.Now()

	var (
		wg       sync.WaitGroup
		runs     atomic.Int64
		failures atomic.Int64
	)

	for u := 0; u < r.users; u++ {
		wg.Add(1)
		go func(user int) {
			defer wg.Done()
			r.runUser(ctx, user, &runs, &failures)
		}(u)
	}
	wg.Wait()

	stats := &Stats{
		Users:      r.users,
		Iterations: r.iterations,
		Runs:       runs.Load(),
		Failures:   failures.Load(),
		Elapsed:    time.Since(start),
	}
	return stats, ctx.Err()
}

func (r *Runner) runUser(ctx context.Context, user int, runs, failures *atomic.Int64) {
	logger := r.logger.With("user", user)

	client, err := r.factory(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "client setup failed", "err", err)
		failures.Add(1)
		return
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.WarnContext(ctx, "client close failed", "err", err)
		}
	}()

	for i := 0; i < r.iterations; i++ {
		if ctx.Err() != nil {
			logger.DebugContext(ctx, "run abandoned", "completed", i)
			return
		}

		session := domain.NewSession(fmt.Sprintf("vu-%d-%d", user, i), client)
		_, err := r.chain.Run(ctx, session)
		runs.Add(1)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.DebugContext(ctx, "run abandoned mid-iteration", "iteration", i)
				return
			}
			failures.Add(1)
			logger.DebugContext(ctx, "iteration failed", "iteration", i, "err", err)
		}

		if r.pace > 0 && i < r.iterations-1 {
			select {
			case <-time.After(r.pace):
			case <-ctx.Done():
				return
			}
		}
	}
}
