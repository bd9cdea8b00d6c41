// Package metric exposes Prometheus collectors for the driver's IO and
// property paths.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vloop"

// Metrics holds all driver-level collectors. A nil *Metrics disables
// collection; every recording method is nil-safe.
type Metrics struct {
	IOCycles        *prometheus.CounterVec // by operation
	SilentCycles    prometheus.Counter
	Overloads       prometheus.Counter
	PropertyQueries *prometheus.CounterVec // by call and status
	ConfigChanges   prometheus.Counter
	RunningClients  prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		IOCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "io",
			Name:      "cycles_total",
			Help:      "Total number of IO cycles executed",
		}, []string{"operation"}),

		SilentCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "io",
			Name:      "silent_cycles_total",
			Help:      "Total number of read cycles served as silence",
		}),

		Overloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "io",
			Name:      "overloads_total",
			Help:      "Total number of cycles dropped because their deadline had passed",
		}),

		PropertyQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "property",
			Name:      "queries_total",
			Help:      "Total number of property calls",
		}, []string{"call", "status"}),

		ConfigChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "device",
			Name:      "config_changes_total",
			Help:      "Total number of performed device configuration changes",
		}),

		RunningClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "device",
			Name:      "running_clients",
			Help:      "Number of clients with IO currently started",
		}),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.IOCycles,
		m.SilentCycles,
		m.Overloads,
		m.PropertyQueries,
		m.ConfigChanges,
		m.RunningClients,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) IOCycle(operation string) {
	if m == nil {
		return
	}
	m.IOCycles.WithLabelValues(operation).Inc()
}

func (m *Metrics) SilentCycle() {
	if m == nil {
		return
	}
	m.SilentCycles.Inc()
}

func (m *Metrics) Overload() {
	if m == nil {
		return
	}
	m.Overloads.Inc()
}

func (m *Metrics) PropertyQuery(call, status string) {
	if m == nil {
		return
	}
	m.PropertyQueries.WithLabelValues(call, status).Inc()
}

func (m *Metrics) ConfigChange() {
	if m == nil {
		return
	}
	m.ConfigChanges.Inc()
}

func (m *Metrics) SetRunningClients(n int) {
	if m == nil {
		return
	}
	m.RunningClients.Set(float64(n))
}
