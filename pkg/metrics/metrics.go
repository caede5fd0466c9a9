// Package metrics provides Prometheus metrics for the UI Guide service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered once on the default registry.
var (
	AskRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uiguide_ask_requests_total",
			Help: "Total number of ask operations by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	AskRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uiguide_ask_retries_total",
			Help: "Total number of retried ask attempts by mode",
		},
		[]string{"mode"},
	)

	AskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uiguide_ask_duration_seconds",
			Help:    "Duration of ask operations including retries",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"mode"},
	)

	SupersededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uiguide_superseded_requests_total",
			Help: "Total number of in-flight requests discarded by a newer request",
		},
		[]string{"scope"},
	)

	HealthLatency = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uiguide_health_latency_milliseconds",
			Help: "Latency of the last successful health probe",
		},
	)

	HealthState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "uiguide_health_state",
			Help: "1 for the current remote API state, 0 otherwise",
		},
		[]string{"state"},
	)

	StoreFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uiguide_store_failures_total",
			Help: "Total number of recovered store failures by operation",
		},
		[]string{"operation"},
	)
)

// RecordAsk records a finished ask operation.
func RecordAsk(mode, outcome string, duration time.Duration) {
	AskRequestsTotal.WithLabelValues(mode, outcome).Inc()
	AskDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordHealth marks state as the current API state.
func RecordHealth(state string, states []string, latencyMs int64) {
	for _, s := range states {
		v := 0.0
		if s == state {
			v = 1
		}
		HealthState.WithLabelValues(s).Set(v)
	}
	if latencyMs >= 0 {
		HealthLatency.Set(float64(latencyMs))
	}
}
