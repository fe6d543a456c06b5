package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/harrow/pkg/observability"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusReporter(t *testing.T) {
	registry := prometheus.NewRegistry()
	reporter, err := observability.NewPrometheusReporter(observability.WithRegisterer(registry))
	require.NoError(t, err)

	ctx := context.Background()
	reporter.Report(ctx, ports.Measurement{Name: "get users", Duration: 5 * time.Millisecond})
	reporter.Report(ctx, ports.Measurement{Name: "get users", Duration: 7 * time.Millisecond})
	reporter.Report(ctx, ports.Measurement{Name: "put users", Duration: time.Millisecond, Err: errors.New("boom")})

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := map[string]int{}
	for _, f := range families {
		byName[f.GetName()] = len(f.GetMetric())
	}
	assert.Equal(t, 2, byName["harrow_action_duration_seconds"], "one series per action")
	assert.Equal(t, 2, byName["harrow_actions_total"], "ok and ko series")
}

func TestPrometheusReporter_DoubleRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := observability.NewPrometheusReporter(observability.WithRegisterer(registry))
	require.NoError(t, err)

	_, err = observability.NewPrometheusReporter(observability.WithRegisterer(registry))
	assert.Error(t, err, "registering the same collectors twice must fail")
}

func TestMulti(t *testing.T) {
	var got []string
	collect := func(tag string) ports.Reporter {
		return ports.ReporterFunc(func(_ context.Context, m ports.Measurement) {
			got = append(got, tag+":"+m.Name)
		})
	}

	multi := observability.Multi(collect("a"), collect("b"))
	multi.Report(context.Background(), ports.Measurement{Name: "get users"})
	assert.Equal(t, []string{"a:get users", "b:get users"}, got)
}
