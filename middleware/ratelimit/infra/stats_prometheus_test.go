package infra

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-gateway/middleware/ratelimit/domain"
)

func TestPrometheusStatsStore_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPrometheusStatsStore(reg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_ = s.Record(ctx, domain.StatsEvent{Allowed: true})
	_ = s.Record(ctx, domain.StatsEvent{Allowed: true})
	_ = s.Record(ctx, domain.StatsEvent{Allowed: false})

	assert.Equal(t, 2.0, testutil.ToFloat64(s.decisions.WithLabelValues("allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.decisions.WithLabelValues("denied")))
}

func TestPrometheusStatsStore_TrackedGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusStatsStore(reg, func() int { return 7 })
	require.NoError(t, err)

	expected := `
# HELP ratelimit_tracked_identifiers Identifiers with an open counting window
# TYPE ratelimit_tracked_identifiers gauge
ratelimit_tracked_identifiers 7
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ratelimit_tracked_identifiers"))
}

func TestPrometheusStatsStore_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusStatsStore(reg, nil)
	require.NoError(t, err)

	_, err = NewPrometheusStatsStore(reg, nil)
	assert.Error(t, err)
}
