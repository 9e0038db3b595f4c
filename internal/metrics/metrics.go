// Package metrics exposes the platform's Prometheus surface. Each process
// (supervisor, monitor, analyzer, planner, executor) registers the counters
// and gauges relevant to its own loop and mounts Handler() under /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every gauge/counter the platform exposes. Fields unused by a
// given process are simply never incremented; nil-receiver methods are safe
// no-ops so a process can pass a nil *Metrics in tests.
type Metrics struct {
	reg *prometheus.Registry

	sensorReadingsTotal   *prometheus.CounterVec
	sensorDropsTotal      *prometheus.CounterVec
	statusPublishedTotal  *prometheus.CounterVec
	planActionsTotal      *prometheus.CounterVec
	commandsAppliedTotal  *prometheus.CounterVec
	commandsRejectedTotal *prometheus.CounterVec
	staleCommandGauge     *prometheus.GaugeVec
	actuatorLevelGauge    *prometheus.GaugeVec
	breakerStateGauge     *prometheus.GaugeVec
	zonesActiveGauge      prometheus.Gauge
	loopDuration          *prometheus.HistogramVec
}

// New builds and registers a Metrics instance in a fresh registry, avoiding
// the global prometheus.DefaultRegisterer so multiple processes under test
// can coexist in one binary.
func New(component string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		sensorReadingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poultrymapek_sensor_readings_total",
			Help: "Sensor readings ingested by the monitor, by farm/zone/type.",
		}, []string{"farm", "zone", "type"}),
		sensorDropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poultrymapek_sensor_drops_total",
			Help: "Sensor messages dropped as malformed or unknown, by reason.",
		}, []string{"reason"}),
		statusPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poultrymapek_status_published_total",
			Help: "Zone status messages published by the analyzer.",
		}, []string{"farm", "zone"}),
		planActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poultrymapek_plan_actions_total",
			Help: "Actions emitted by the planner, or commands published by the executor, by actuator.",
		}, []string{"farm", "zone", "actuator"}),
		commandsAppliedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poultrymapek_commands_applied_total",
			Help: "Well-formed actuator commands delivered to a simulator zone (including ones rejected by the startup lockout).",
		}, []string{"farm", "zone", "actuator"}),
		commandsRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poultrymapek_commands_rejected_total",
			Help: "Actuator commands rejected, by reason (malformed).",
		}, []string{"farm", "zone", "reason"}),
		staleCommandGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "poultrymapek_command_age_seconds",
			Help: "Age of the last accepted command per actuator.",
		}, []string{"farm", "zone", "actuator"}),
		actuatorLevelGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "poultrymapek_actuator_level",
			Help: "Current simulated actuator level (0-1 or on/off as 0/1).",
		}, []string{"farm", "zone", "actuator"}),
		breakerStateGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "poultrymapek_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"}),
		zonesActiveGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poultrymapek_zones_active",
			Help: "Number of zone workers currently running in this process.",
		}),
		loopDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poultrymapek_loop_duration_seconds",
			Help:    "Duration of one MAPE-K component's per-zone processing pass.",
			Buckets: prometheus.DefBuckets,
		}, []string{"component"}),
	}

	reg.MustRegister(
		m.sensorReadingsTotal,
		m.sensorDropsTotal,
		m.statusPublishedTotal,
		m.planActionsTotal,
		m.commandsAppliedTotal,
		m.commandsRejectedTotal,
		m.staleCommandGauge,
		m.actuatorLevelGauge,
		m.breakerStateGauge,
		m.zonesActiveGauge,
		m.loopDuration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "poultrymapek_build_info",
			Help:        "Static info metric identifying the process.",
			ConstLabels: prometheus.Labels{"component": component},
		}, func() float64 { return 1 }),
	)

	return m
}

// Handler returns the HTTP handler to mount at /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) SensorReading(farm, zone, sensorType string) {
	if m == nil {
		return
	}
	m.sensorReadingsTotal.WithLabelValues(farm, zone, sensorType).Inc()
}

func (m *Metrics) SensorDrop(reason string) {
	if m == nil {
		return
	}
	m.sensorDropsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) StatusPublished(farm, zone string) {
	if m == nil {
		return
	}
	m.statusPublishedTotal.WithLabelValues(farm, zone).Inc()
}

func (m *Metrics) PlanAction(farm, zone, actuator string) {
	if m == nil {
		return
	}
	m.planActionsTotal.WithLabelValues(farm, zone, actuator).Inc()
}

func (m *Metrics) CommandApplied(farm, zone, actuator string) {
	if m == nil {
		return
	}
	m.commandsAppliedTotal.WithLabelValues(farm, zone, actuator).Inc()
}

func (m *Metrics) CommandRejected(farm, zone, reason string) {
	if m == nil {
		return
	}
	m.commandsRejectedTotal.WithLabelValues(farm, zone, reason).Inc()
}

func (m *Metrics) SetCommandAge(farm, zone, actuator string, ageSeconds float64) {
	if m == nil {
		return
	}
	m.staleCommandGauge.WithLabelValues(farm, zone, actuator).Set(ageSeconds)
}

func (m *Metrics) SetActuatorLevel(farm, zone, actuator string, level float64) {
	if m == nil {
		return
	}
	m.actuatorLevelGauge.WithLabelValues(farm, zone, actuator).Set(level)
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerStateGauge.WithLabelValues(name).Set(state)
}

func (m *Metrics) SetZonesActive(n int) {
	if m == nil {
		return
	}
	m.zonesActiveGauge.Set(float64(n))
}

// ObserveLoop records the wall-clock duration of one pass of a component's
// per-zone processing loop (monitor tick, analyzer pass, planner pass, ...).
func (m *Metrics) ObserveLoop(component string, seconds float64) {
	if m == nil {
		return
	}
	m.loopDuration.WithLabelValues(component).Observe(seconds)
}
