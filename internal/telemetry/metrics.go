package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProcessGauges is VajraEdge's `/metrics` surface: process-level gauges
// only (spec §9's ambient-observability note — never per-test
// historical series, respecting the persistence non-goal).
type ProcessGauges struct {
	ActiveTests           prometheus.Gauge
	RegisteredWorkers     prometheus.Gauge
	AssignmentPlanLatency prometheus.Histogram
}

// NewProcessGauges registers VajraEdge's process gauges against reg.
func NewProcessGauges(reg prometheus.Registerer) *ProcessGauges {
	factory := promauto.With(reg)
	return &ProcessGauges{
		ActiveTests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vajraedge",
			Name:      "active_tests",
			Help:      "Number of TestRunners currently RUNNING or DRAINING on this process.",
		}),
		RegisteredWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vajraedge",
			Name:      "registered_workers",
			Help:      "Number of workers currently REGISTERED or RUNNING in the controller's WorkerRegistry.",
		}),
		AssignmentPlanLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vajraedge",
			Name:      "assignment_plan_latency_seconds",
			Help:      "Time controlplane.Plan takes to compute a worker assignment set.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler returns the http.Handler to mount at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
