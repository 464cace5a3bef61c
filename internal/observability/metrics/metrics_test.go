package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalysisMetrics(reg)

	m.ObserveRequest("success")
	m.ObserveRequest("success")
	m.ObserveRequest("potential_pii")
	m.ObserveRepairDropped("highlights", 3)
	m.ObserveRepairDropped("highlights", 0)
	m.ObserveRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("potential_pii")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.repairDropped.WithLabelValues("highlights")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitedTotal))
}

func TestAnalysisMetricsStageHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalysisMetrics(reg)

	m.ObserveStage("generate", 1.5)
	m.ObserveStage("generate", 0.5)

	families, err := reg.Gather()
	require.NoError(t, err)

	var hist *dto.Histogram
	for _, mf := range families {
		if mf.GetName() != "vibecheck_analysis_duration_seconds" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		hist = mf.GetMetric()[0].GetHistogram()
	}
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.InDelta(t, 2.0, hist.GetSampleSum(), 1e-9)
}

func TestAnalysisMetricsNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalysisMetrics(reg)
	m.ObserveRequest("success")
	m.ObserveStage("repair", 0.01)
	m.ObserveRepairDropped("deepDive", 1)
	m.ObserveRateLimited()

	count, err := testutil.GatherAndCount(reg,
		"vibecheck_analysis_requests_total",
		"vibecheck_analysis_duration_seconds",
		"vibecheck_repair_dropped_total",
		"vibecheck_ratelimit_rejected_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestAnalysisMetricsNilSafe(t *testing.T) {
	var m *AnalysisMetrics
	m.ObserveRequest("success")
	m.ObserveStage("validate", 0.1)
	m.ObserveRepairDropped("highlights", 1)
	m.ObserveRateLimited()
}
