// Package metrics provides Prometheus metrics for the scoutcore service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scoutcore service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Derived-metric evaluation
	derivedEvaluations prometheus.Counter
	derivedElements    prometheus.Counter

	// Aggregate range recomputation
	aggRecomputes        prometheus.Counter
	aggRecomputeDuration prometheus.Histogram
	aggRangesStored      prometheus.Gauge

	// Allocation runs
	allocationRuns  *prometheus.CounterVec
	slotsAssigned   *prometheus.CounterVec
	scorersSwapped  prometheus.Counter
	matchesSynced   prometheus.Counter
	allocationLocks prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoutcore",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.derivedEvaluations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "derived_evaluations_total",
		Help:      "Total match records run through the derived-metric evaluator",
	})

	m.derivedElements = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "derived_elements_total",
		Help:      "Total derived elements computed across all evaluations",
	})

	m.aggRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "agg_recomputes_total",
		Help:      "Total aggregate range recomputations",
	})

	m.aggRecomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "agg_recompute_duration_seconds",
		Help:      "Duration of one aggregate range recomputation",
		Buckets:   m.histogramBuckets,
	})

	m.aggRangesStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "agg_ranges_stored",
		Help:      "Aggregate range documents written by the most recent recomputation",
	})

	m.allocationRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "allocation_runs_total",
			Help:      "Total allocation runs by kind (pit, preference, block)",
		},
		[]string{"kind"},
	)

	m.slotsAssigned = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "slots_assigned_total",
			Help:      "Total match-team slots given an assigned scorer, by allocation kind",
		},
		[]string{"kind"},
	)

	m.scorersSwapped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scorers_swapped_total",
		Help:      "Total assignment documents rewritten by scorer swaps",
	})

	m.matchesSynced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_synced_total",
		Help:      "Total matches loaded from TheBlueAlliance",
	})

	m.allocationLocks = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocation_locks_held",
		Help:      "Advisory per-(org,event) locks currently held",
	})
}

// RecordDerivedEvaluation counts one match record evaluated with the given
// number of derived elements.
func (m *Manager) RecordDerivedEvaluation(elements int) {
	m.derivedEvaluations.Inc()
	m.derivedElements.Add(float64(elements))
}

// ObserveAggRecompute records one aggregate range recomputation.
func (m *Manager) ObserveAggRecompute(d time.Duration, rangeCount int) {
	m.aggRecomputes.Inc()
	m.aggRecomputeDuration.Observe(d.Seconds())
	m.aggRangesStored.Set(float64(rangeCount))
}

// RecordAllocationRun records one allocation run and its assigned slots.
func (m *Manager) RecordAllocationRun(kind string, assigned int) {
	m.allocationRuns.WithLabelValues(kind).Inc()
	m.slotsAssigned.WithLabelValues(kind).Add(float64(assigned))
}

// RecordSwap counts documents rewritten by a scorer swap.
func (m *Manager) RecordSwap(changed int) {
	m.scorersSwapped.Add(float64(changed))
}

// RecordMatchesSynced counts matches loaded from the schedule sync.
func (m *Manager) RecordMatchesSynced(n int) {
	m.matchesSynced.Add(float64(n))
}

// LockAcquired and LockReleased track held advisory locks.
func (m *Manager) LockAcquired() { m.allocationLocks.Inc() }

// LockReleased decrements the held-lock gauge.
func (m *Manager) LockReleased() { m.allocationLocks.Dec() }

// Get returns the global metrics manager.
func Get() *Manager {
	return globalManager
}

// GetRegistry returns the registry backing the global manager, for serving
// /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
