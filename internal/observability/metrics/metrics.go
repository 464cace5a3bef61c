package metrics

import "github.com/prometheus/client_golang/prometheus"

// AnalysisMetrics exposes counters/histograms for the analysis pipeline.
type AnalysisMetrics struct {
	requestsTotal    *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	repairDropped    *prometheus.CounterVec
	rateLimitedTotal prometheus.Counter
}

func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vibecheck",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total analyze requests by outcome",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vibecheck",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Latency of each analysis stage",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"stage"}),
		repairDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vibecheck",
			Subsystem: "repair",
			Name:      "dropped_total",
			Help:      "Model output fragments discarded during repair",
		}, []string{"section"}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vibecheck",
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.stageDuration, m.repairDropped, m.rateLimitedTotal)
	return m
}

// ObserveRequest counts a finished analyze request. outcome is "success" or
// an error kind.
func (m *AnalysisMetrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

func (m *AnalysisMetrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *AnalysisMetrics) ObserveRepairDropped(section string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.repairDropped.WithLabelValues(section).Add(float64(count))
}

func (m *AnalysisMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}
