package runner

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithUsers sets the number of concurrent virtual users.
func WithUsers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.users = n
		}
	}
}

// WithIterations sets how many times each user runs the chain.
func WithIterations(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.iterations = n
		}
	}
}

// WithPace inserts a fixed delay between consecutive iterations of
// the same user.
func WithPace(d time.Duration) Option {
	return func(r *Runner) {
		r.pace = d
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}
