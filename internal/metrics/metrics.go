// Package metrics holds the Prometheus collectors for the alarm panel.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
)

// Publish status label values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Command result label values.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultRefused  = "refused"
)

// Metrics owns a private registry so tests and multiple instances never
// collide on the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	// MessagesReceived counts inbound MQTT messages by resolved topic kind.
	MessagesReceived *prometheus.CounterVec

	// Commands counts command outcomes. reason is empty for accepted commands.
	Commands *prometheus.CounterVec

	// Publishes counts outbound publishes by kind (state/event/sensor) and status.
	Publishes *prometheus.CounterVec

	// CommandLatency observes time spent validating and applying a command.
	CommandLatency prometheus.Histogram

	// SensorReadings counts sensor readings by sub-kind and whether the value was truthy.
	SensorReadings *prometheus.CounterVec

	// Events counts raised panel events.
	Events *prometheus.CounterVec

	// State is 1 for the current alarm state and 0 for every other state.
	State *prometheus.GaugeVec
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alarmpanel_messages_received_total",
				Help: "Total number of inbound MQTT messages by topic kind.",
			},
			[]string{"kind"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alarmpanel_commands_total",
				Help: "Total number of alarm commands by result and rejection reason.",
			},
			[]string{"result", "reason"},
		),
		Publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alarmpanel_publishes_total",
				Help: "Total number of outbound publishes by kind and status.",
			},
			[]string{"kind", "status"},
		),
		CommandLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "alarmpanel_command_duration_seconds",
				Help:    "Time spent validating and applying alarm commands.",
				Buckets: prometheus.DefBuckets,
			},
		),
		SensorReadings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alarmpanel_sensor_readings_total",
				Help: "Total number of sensor readings by kind and activity.",
			},
			[]string{"kind", "active"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alarmpanel_events_total",
				Help: "Total number of raised panel events.",
			},
			[]string{"event"},
		),
		State: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "alarmpanel_state",
				Help: "Current alarm state (1 for the active state, 0 otherwise).",
			},
			[]string{"state"},
		),
	}

	m.registry.MustRegister(
		m.MessagesReceived,
		m.Commands,
		m.Publishes,
		m.CommandLatency,
		m.SensorReadings,
		m.Events,
		m.State,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, s := range alarm.States() {
		m.State.WithLabelValues(string(s)).Set(0)
	}

	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the HTTP handler serving the registry in exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetState marks s as the current state.
func (m *Metrics) SetState(s alarm.State) {
	for _, st := range alarm.States() {
		v := 0.0
		if st == s {
			v = 1
		}
		m.State.WithLabelValues(string(st)).Set(v)
	}
}

// ObservePublish counts one publish of kind with its outcome.
func (m *Metrics) ObservePublish(kind string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	m.Publishes.WithLabelValues(kind, status).Inc()
}
