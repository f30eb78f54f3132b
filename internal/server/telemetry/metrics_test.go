package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("GET", "/studies/:id", 200)
	m.ObserveRequest("GET", "/studies/:id", 200)
	m.VersionConflict("study")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/studies/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts.WithLabelValues("study")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200)
		m.VersionConflict("study")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.VersionConflict("centre")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `biobank_version_conflicts_total{kind="centre"} 1`))
}

func TestSetupTracing_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
