package network

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus-compatible counters and gauges for a
// running network, namespaced "noflo_network". The coordinator's
// components feed it as a side-channel: nothing here participates in run-state,
// quiescence, or event-buffering decisions.
type Metrics struct {
	processes     prometheus.Gauge
	activeLoad    prometheus.Gauge
	sockets       prometheus.Gauge
	ipEvents      *prometheus.CounterVec
	processErrors prometheus.Counter
	starts        prometheus.Counter
	ends          prometheus.Counter
	uptime        prometheus.Gauge

	mu      sync.Mutex
	enabled bool
}

// NewMetrics creates and registers network metrics against registry.
// A nil registry uses prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,

		processes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "noflo_network",
			Name:      "processes",
			Help:      "Number of process records currently in the process table.",
		}),
		activeLoad: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "noflo_network",
			Name:      "active_load",
			Help:      "Sum of Load() plus open legacy connections across every process with a loaded component.",
		}),
		sockets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "noflo_network",
			Name:      "sockets",
			Help:      "Number of sockets currently in the socket registry.",
		}),
		ipEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noflo_network",
			Name:      "ip_events_total",
			Help:      "Coordinator-level ip events observed, labeled by IP kind.",
		}, []string{"kind"}),
		processErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "noflo_network",
			Name:      "process_errors_total",
			Help:      "process-error events observed.",
		}),
		starts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "noflo_network",
			Name:      "starts_total",
			Help:      "Number of times the network transitioned to started.",
		}),
		ends: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "noflo_network",
			Name:      "ends_total",
			Help:      "Number of times the network transitioned to stopped.",
		}),
		uptime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "noflo_network",
			Name:      "uptime_seconds",
			Help:      "Uptime in seconds recorded at the most recent end event.",
		}),
	}
}

func (m *Metrics) setProcesses(n int) {
	if !m.isEnabled() {
		return
	}
	m.processes.Set(float64(n))
}

func (m *Metrics) setActiveLoad(n int) {
	if !m.isEnabled() {
		return
	}
	m.activeLoad.Set(float64(n))
}

func (m *Metrics) setSockets(n int) {
	if !m.isEnabled() {
		return
	}
	m.sockets.Set(float64(n))
}

func (m *Metrics) observeIP(kind string) {
	if !m.isEnabled() {
		return
	}
	m.ipEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeProcessError() {
	if !m.isEnabled() {
		return
	}
	m.processErrors.Inc()
}

func (m *Metrics) observeStart() {
	if !m.isEnabled() {
		return
	}
	m.starts.Inc()
}

func (m *Metrics) observeEnd(uptimeSeconds float64) {
	if !m.isEnabled() {
		return
	}
	m.ends.Inc()
	m.uptime.Set(uptimeSeconds)
}

// Disable stops metric recording without unregistering collectors.
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable resumes metric recording after Disable.
func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}

func (m *Metrics) isEnabled() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}
