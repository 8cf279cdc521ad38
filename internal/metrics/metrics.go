// Package metrics holds the Prometheus instruments shared by the enrichment
// engine. A nil *Metrics is valid and records nothing, so components can be
// constructed without a registry in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookshelf"

// Metrics holds every instrument used by the engine.
type Metrics struct {
	// Gateway
	GatewayRequests    *prometheus.CounterVec
	GatewayLatency     *prometheus.HistogramVec
	GatewayWaitSeconds prometheus.Histogram
	BreakerTransitions *prometheus.CounterVec

	// Orchestrator and cache
	AdapterOutcomes *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	CacheEntries    prometheus.Gauge

	// Disambiguation
	Decisions *prometheus.CounterVec

	// Batch
	BatchChunks *prometheus.CounterVec
	BatchItems  prometheus.Counter
}

// New creates and registers all metrics with reg. A nil reg uses a private
// registry so repeated construction never panics on duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	m := &Metrics{}
	m.initGateway(factory)
	m.initEnrichment(factory)
	m.initDecisions(factory)
	m.initBatch(factory)
	return m
}

func (m *Metrics) initGateway(factory promauto.Factory) {
	m.GatewayRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Outbound requests by provider and classified outcome",
		},
		[]string{"provider", "outcome"},
	)
	m.GatewayLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Round trip time of outbound requests",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"provider"},
	)
	m.GatewayWaitSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "pacing_wait_seconds",
			Help:      "Time spent waiting for the shared pacing limiter",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
	m.BreakerTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state changes by provider and new state",
		},
		[]string{"provider", "state"},
	)
}

func (m *Metrics) initEnrichment(factory promauto.Factory) {
	m.AdapterOutcomes = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "adapter_outcomes_total",
			Help:      "Adapter fetch outcomes by adapter and outcome",
		},
		[]string{"adapter", "outcome"},
	)
	m.CacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by result (hit, miss, shared)",
		},
		[]string{"result"},
	)
	m.CacheEntries = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Number of enriched items held by the result cache",
		},
	)
}

func (m *Metrics) initDecisions(factory promauto.Factory) {
	m.Decisions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "disambiguation",
			Name:      "decisions_total",
			Help:      "Creator disambiguation decisions by result",
		},
		[]string{"result"},
	)
}

func (m *Metrics) initBatch(factory promauto.Factory) {
	m.BatchChunks = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "chunks_total",
			Help:      "Batch chunks by status (completed, aborted)",
		},
		[]string{"status"},
	)
	m.BatchItems = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "items_enriched_total",
			Help:      "Items returned by batch enrichment",
		},
	)
}

// ObserveRequest records one gateway call.
func (m *Metrics) ObserveRequest(provider, outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(provider, outcome).Inc()
	if latency > 0 {
		m.GatewayLatency.WithLabelValues(provider).Observe(latency.Seconds())
	}
}

// ObserveWait records time spent blocked on the pacing limiter.
func (m *Metrics) ObserveWait(wait time.Duration) {
	if m == nil {
		return
	}
	m.GatewayWaitSeconds.Observe(wait.Seconds())
}

// BreakerChanged records a breaker transition.
func (m *Metrics) BreakerChanged(provider, state string) {
	if m == nil {
		return
	}
	m.BreakerTransitions.WithLabelValues(provider, state).Inc()
}

// AdapterOutcome records the classified result of one adapter fetch.
func (m *Metrics) AdapterOutcome(adapter, outcome string) {
	if m == nil {
		return
	}
	m.AdapterOutcomes.WithLabelValues(adapter, outcome).Inc()
}

// CacheLookup records a cache hit, miss or coalesced wait.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// SetCacheEntries updates the cache size gauge.
func (m *Metrics) SetCacheEntries(count int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(count))
}

// Decision records a disambiguation result.
func (m *Metrics) Decision(result string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(result).Inc()
}

// Chunk records a finished batch chunk and the number of items it returned.
func (m *Metrics) Chunk(status string, items int) {
	if m == nil {
		return
	}
	m.BatchChunks.WithLabelValues(status).Inc()
	m.BatchItems.Add(float64(items))
}
