package runner

import (
	"fmt"
	"time"
)

// Stats aggregates the outcome of a run across all virtual users.
type Stats struct {
	// Users is the number of virtual users that were started.
	Users int
	// Iterations is the configured iteration count per user.
	Iterations int
	// Runs counts chain executions that were started, including
	// failed ones.
	Runs int64
	// Failures counts chain executions that ended in error, plus
	// users whose client could not be created.
	Failures int64
	// Elapsed is the wall-clock duration of the whole run.
	Elapsed time.Duration
}

// FailureRate returns the fraction of runs that failed, in [0, 1].
func (s *Stats) FailureRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Runs)
}

// Throughput returns completed runs per second.
func (s *Stats) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Runs) / s.Elapsed.Seconds()
}

// String renders a one-line summary suitable for logs.
func (s *Stats) String() string {
	return fmt.Sprintf("users=%d runs=%d failures=%d elapsed=%s",
		s.Users, s.Runs, s.Failures, s.Elapsed.Round(time.Millisecond))
}
