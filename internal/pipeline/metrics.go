package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	Fetched     prometheus.Counter
	Cached      prometheus.Counter
	Failed      prometheus.Counter
	Skipped     prometheus.Counter
	Displayed   prometheus.Counter
	BufferDepth prometheus.Gauge
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Fetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "koneko",
			Subsystem: "pipeline",
			Name:      "jobs_fetched_total",
			Help:      "Downloads completed by the producer.",
		}),
		Cached: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "koneko",
			Subsystem: "pipeline",
			Name:      "jobs_cached_total",
			Help:      "Jobs satisfied by files already on disk.",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "koneko",
			Subsystem: "pipeline",
			Name:      "jobs_failed_total",
			Help:      "Downloads that failed.",
		}),
		Skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "koneko",
			Subsystem: "pipeline",
			Name:      "ordinals_skipped_total",
			Help:      "Ordinals the sequencer skipped or dropped without display.",
		}),
		Displayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "koneko",
			Subsystem: "pipeline",
			Name:      "items_displayed_total",
			Help:      "Items handed to the renderer.",
		}),
		BufferDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "koneko",
			Subsystem: "pipeline",
			Name:      "reorder_buffer_depth",
			Help:      "Completed ordinals waiting for an earlier ordinal.",
		}),
	}
}

func (m *Metrics) fetched() {
	if m != nil {
		m.Fetched.Inc()
	}
}

func (m *Metrics) cached() {
	if m != nil {
		m.Cached.Inc()
	}
}

func (m *Metrics) failed() {
	if m != nil {
		m.Failed.Inc()
	}
}

func (m *Metrics) skipped(n int) {
	if m != nil && n > 0 {
		m.Skipped.Add(float64(n))
	}
}

func (m *Metrics) displayed() {
	if m != nil {
		m.Displayed.Inc()
	}
}

func (m *Metrics) depth(n int) {
	if m != nil {
		m.BufferDepth.Set(float64(n))
	}
}
