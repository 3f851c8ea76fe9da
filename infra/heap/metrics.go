package heap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks block lifecycle events. One Metrics may be shared by
// several arenas.
type Metrics struct {
	allocated prometheus.Counter
	freed     prometheus.Counter
	reused    prometheus.Counter
	live      prometheus.Gauge
}

// NewMetrics registers the heap collectors with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		allocated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "ownkit",
			Subsystem: "heap",
			Name:      "blocks_allocated_total",
			Help:      "Total number of blocks handed out by arenas.",
		}),
		freed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "ownkit",
			Subsystem: "heap",
			Name:      "blocks_freed_total",
			Help:      "Total number of blocks freed.",
		}),
		reused: f.NewCounter(prometheus.CounterOpts{
			Namespace: "ownkit",
			Subsystem: "heap",
			Name:      "blocks_reused_total",
			Help:      "Total number of allocations served from the free ring.",
		}),
		live: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "ownkit",
			Subsystem: "heap",
			Name:      "blocks_live",
			Help:      "Number of blocks currently allocated.",
		}),
	}
}
