package observability

import (
	"context"

	"github.com/aretw0/harrow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusReporter records per-action latency and outcome metrics.
type PrometheusReporter struct {
	durations *prometheus.HistogramVec
	outcomes  *prometheus.CounterVec
}

// PrometheusOption configures the reporter.
type PrometheusOption func(*prometheusConfig)

type prometheusConfig struct {
	registerer prometheus.Registerer
}

// WithRegisterer registers the collectors somewhere other than the default
// registry (e.g. a per-test registry).
func WithRegisterer(r prometheus.Registerer) PrometheusOption {
	return func(c *prometheusConfig) {
		c.registerer = r
	}
}

// NewPrometheusReporter creates and registers the action metrics.
func NewPrometheusReporter(opts ...PrometheusOption) (*PrometheusReporter, error) {
	cfg := prometheusConfig{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &PrometheusReporter{
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "harrow_action_duration_seconds",
				Help: "Duration of chain actions, including resolution and checks",
			},
			[]string{"action"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harrow_actions_total",
				Help: "Total executed chain actions by outcome",
			},
			[]string{"action", "outcome"},
		),
	}

	if err := cfg.registerer.Register(r.durations); err != nil {
		return nil, err
	}
	if err := cfg.registerer.Register(r.outcomes); err != nil {
		return nil, err
	}
	return r, nil
}

// Report records the measurement.
func (r *PrometheusReporter) Report(_ context.Context, m ports.Measurement) {
	outcome := "ok"
	if m.Failed() {
		outcome = "ko"
	}
	r.durations.WithLabelValues(m.Name).Observe(m.Duration.Seconds())
	r.outcomes.WithLabelValues(m.Name, outcome).Inc()
}
