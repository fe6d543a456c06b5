package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/harrow/pkg/observability"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServerServesRunRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	reporter, err := observability.NewPrometheusReporter(observability.WithRegisterer(reg))
	require.NoError(t, err)

	reporter.Report(context.Background(), ports.Measurement{Name: "get users", Duration: time.Millisecond})

	srv := newMetricsServer("127.0.0.1:0", reg)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "harrow_action_duration_seconds")
	assert.Contains(t, body, "harrow_actions_total")

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

// Repeated runs in one process each build their own registry, so setting up
// metrics twice must not trip duplicate registration.
func TestMetricsSetupRepeatable(t *testing.T) {
	for i := 0; i < 2; i++ {
		reg := prometheus.NewRegistry()
		_, err := observability.NewPrometheusReporter(observability.WithRegisterer(reg))
		require.NoError(t, err)
	}
}
