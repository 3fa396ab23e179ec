package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics ...
type Metrics struct {
	batches    *prometheus.CounterVec
	retries    prometheus.Counter
	queueDepth prometheus.Gauge
}

// NewMetrics registers the ledger metrics with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notary",
			Subsystem: "ledger",
			Name:      "batches_total",
			Help:      "Batches executed, by final status.",
		}, []string{"status"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notary",
			Subsystem: "ledger",
			Name:      "conflict_retries_total",
			Help:      "Batch replays caused by store write conflicts.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "notary",
			Subsystem: "ledger",
			Name:      "queue_depth",
			Help:      "Batches waiting to be executed.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.batches, m.retries, m.queueDepth)
	}

	return m
}
