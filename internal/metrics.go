package internal

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "ndn_framebuffer"

// Metrics holds the pool's Prometheus collectors. Unlike a typical
// package-level promauto registration (as in a long-running server), each
// Buffer owns its own prometheus.Registry so that constructing more than
// one Buffer — routine in tests — never panics on duplicate collector
// registration.
//
// DuplicateSegs and AppendErrors are mirrored into plain atomic counters
// alongside their prometheus.Counter, since a prometheus.Counter exposes
// no way to read its current value back out — Stats() needs that value to
// report duplicate-segment rates without scraping /metrics.
type Metrics struct {
	FreeSlots       prometheus.Gauge
	AssemblingSlots prometheus.Gauge
	LockedSlots     prometheus.Gauge
	EventsEmitted   *prometheus.CounterVec
	DuplicateSegs   prometheus.Counter
	AppendErrors    prometheus.Counter

	duplicateSegs atomic.Uint64
	appendErrors  atomic.Uint64
}

// NewMetrics registers the pool's collectors against reg. Pass a fresh
// prometheus.NewRegistry() per Buffer — never prometheus's global default
// registry, which a second Buffer (or a second test) would collide with.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FreeSlots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "free_slots",
			Help:      "Number of slots currently in the free pool.",
		}),
		AssemblingSlots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "assembling_slots",
			Help:      "Number of slots currently assembling a frame.",
		}),
		LockedSlots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "locked_slots",
			Help:      "Number of slots currently locked by a consumer.",
		}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_emitted_total",
			Help:      "Events emitted by the buffer, by type.",
		}, []string{"type"}),
		DuplicateSegs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "duplicate_segments_total",
			Help:      "Segments appended whose segment number was already stored.",
		}),
		AppendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "append_errors_total",
			Help:      "AppendSegment calls rejected due to range overflow or bad state.",
		}),
	}
}

func (m *Metrics) observeEvent(t EventType) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) incDuplicateSegs() {
	if m == nil {
		return
	}
	m.DuplicateSegs.Inc()
	m.duplicateSegs.Add(1)
}

func (m *Metrics) incAppendErrors() {
	if m == nil {
		return
	}
	m.AppendErrors.Inc()
	m.appendErrors.Add(1)
}

// snapshot returns the current duplicate-segment and append-error counts.
// Safe to call on a nil *Metrics (returns zeros), so Stats() works the same
// whether or not a Buffer was constructed with metrics wired in.
func (m *Metrics) snapshot() (duplicateSegs, appendErrors uint64) {
	if m == nil {
		return 0, 0
	}
	return m.duplicateSegs.Load(), m.appendErrors.Load()
}
