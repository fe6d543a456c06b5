package ports

import (
	"context"
	"time"
)

// Measurement captures the outcome of a single executed action.
type Measurement struct {
	// Name is the request name of the action, e.g. "get users".
	Name string

	// Start is when the action began resolving.
	Start time.Time

	// Duration covers resolution, the cache call and the check pipeline.
	Duration time.Duration

	// Err is nil on success. On failure it carries the action's reason.
	Err error
}

// Failed reports whether the measurement represents a failed action.
func (m Measurement) Failed() bool {
	return m.Err != nil
}

// Reporter receives per-action measurements. Implementations must be safe for
// concurrent use; many sessions report through one Reporter.
type Reporter interface {
	Report(ctx context.Context, m Measurement)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, m Measurement)

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, m Measurement) {
	f(ctx, m)
}

// NopReporter discards all measurements.
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(context.Context, Measurement) {}
