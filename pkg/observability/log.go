package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/harrow/pkg/ports"
)

// NewLogReporter mirrors every measurement to a structured logger.
// Successful actions log at debug, failed ones at warn.
func NewLogReporter(logger *slog.Logger) ports.Reporter {
	return ports.ReporterFunc(func(ctx context.Context, m ports.Measurement) {
		if m.Failed() {
			logger.WarnContext(ctx, "action ko",
				"action", m.Name,
				"duration", m.Duration,
				"err", m.Err,
			)
			return
		}
		logger.DebugContext(ctx, "action ok",
			"action", m.Name,
			"duration", m.Duration,
		)
	})
}

// Multi fans a measurement out to several reporters.
func Multi(reporters ...ports.Reporter) ports.Reporter {
	return ports.ReporterFunc(func(ctx context.Context, m ports.Measurement) {
		for _, r := range reporters {
			r.Report(ctx, m)
		}
	})
}
