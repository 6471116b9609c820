// Package metrics exposes simulation counters and gauges through a
// prometheus registry, one Registry per process.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the simulator.
type Registry struct {
	registry *prometheus.Registry

	// Run lifecycle
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Step loop
	StepsTotal   prometheus.Counter
	StepDuration prometheus.Histogram

	// Dynamics
	GlobalOrder        prometheus.Gauge
	ClusterOrder       *prometheus.GaugeVec
	CouplingDensity    prometheus.Gauge
	PacemakerSwitches  prometheus.Counter
	StrengthsDecoupled prometheus.Counter
}

// NewRegistry creates a registry with all simulator metrics registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncwave_runs_total",
			Help: "Completed simulation runs by outcome",
		},
		[]string{"outcome"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syncwave_run_duration_seconds",
			Help:    "Wall-clock duration of complete runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)

	r.StepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "syncwave_steps_total",
			Help: "Simulation steps executed",
		},
	)

	r.StepDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syncwave_step_duration_seconds",
			Help:    "Wall-clock duration of single steps",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		},
	)

	r.GlobalOrder = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "syncwave_global_order",
			Help: "Current global order parameter",
		},
	)

	r.ClusterOrder = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "syncwave_cluster_order",
			Help: "Current per-cluster order parameter",
		},
		[]string{"cluster"},
	)

	r.CouplingDensity = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "syncwave_coupling_density",
			Help: "Sum of all directed coupling strengths",
		},
	)

	r.PacemakerSwitches = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "syncwave_pacemaker_switches_total",
			Help: "Clusters that entered pacemaker mode",
		},
	)

	r.StrengthsDecoupled = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "syncwave_strengths_decoupled_total",
			Help: "Directed coupling strengths zeroed by the pacemaker rule",
		},
	)

	return r
}

// Gatherer exposes the underlying registry for scraping or test inspection.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordRun records a finished run with its outcome and duration.
func (r *Registry) RecordRun(outcome string, duration time.Duration) {
	r.RunsTotal.WithLabelValues(outcome).Inc()
	r.RunDuration.Observe(duration.Seconds())
}

// RecordStep records one executed step.
func (r *Registry) RecordStep(duration time.Duration, globalOrder float64) {
	r.StepsTotal.Inc()
	r.StepDuration.Observe(duration.Seconds())
	r.GlobalOrder.Set(globalOrder)
}

// RecordPacemaker records pacemaker switches and how many strengths they zeroed.
func (r *Registry) RecordPacemaker(switched, zeroed int) {
	r.PacemakerSwitches.Add(float64(switched))
	r.StrengthsDecoupled.Add(float64(zeroed))
}
