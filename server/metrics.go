package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridline-ai/graphflow"
)

// Metrics tracks run outcomes for the /metrics endpoint.
type Metrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	runIterations prometheus.Histogram
}

// NewMetrics creates run metrics registered on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphflow",
			Name:      "runs_total",
			Help:      "Number of runs executed, by terminal status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphflow",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		runIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphflow",
			Name:      "run_iterations",
			Help:      "Node-execution attempts per run.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(m.runsTotal, m.runDuration, m.runIterations)
	return m
}

// ObserveRun records the outcome of a finished run.
func (m *Metrics) ObserveRun(run *graphflow.Run) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(string(run.Status)).Inc()
	m.runDuration.Observe(run.EndTime.Sub(run.StartTime).Seconds())
	m.runIterations.Observe(float64(run.Iteration))
}
