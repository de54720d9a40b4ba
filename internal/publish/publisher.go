package publish

import (
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
	"github.com/nerrad567/gray-logic-alarm/internal/codec"
	"github.com/nerrad567/gray-logic-alarm/internal/topics"
)

// QoS and Retained are fixed for every outbound message.
const (
	QoS      byte = 0
	Retained      = false
)

// Publish kinds, used as the metrics label.
const (
	KindState  = "state"
	KindEvent  = "event"
	KindSensor = "sensor"
)

// BrokerClient is the publish half of the MQTT client.
type BrokerClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Observer is notified of every publish attempt.
type Observer interface {
	ObservePublish(kind string, err error)
}

// Logger is the logging interface used by the Publisher.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver sets an observer, typically the metrics collector.
func WithObserver(o Observer) Option {
	return func(p *Publisher) { p.observer = o }
}

// Publisher builds outbound payloads and publishes them on the registry's
// topics. It is safe for concurrent use if the BrokerClient is.
type Publisher struct {
	broker   BrokerClient
	registry *topics.Registry
	logger   Logger
	observer Observer
}

// New creates a Publisher.
func New(broker BrokerClient, registry *topics.Registry, opts ...Option) *Publisher {
	p := &Publisher{
		broker:   broker,
		registry: registry,
		logger:   noopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishState publishes {"state": s} on the state topic.
func (p *Publisher) PublishState(s alarm.State) error {
	return p.send(KindState, p.registry.State(), map[string]any{codec.KeyState: string(s)})
}

// PublishEvent publishes {"event": e} on the event topic.
func (p *Publisher) PublishEvent(e alarm.Event) error {
	return p.send(KindEvent, p.registry.Event(), map[string]any{codec.KeyEvent: string(e)})
}

// PublishSensor publishes {"value": value} on the sensor topic for kind.
// kind may be a known SensorKind name or any raw sub-kind; it is lowercased.
func (p *Publisher) PublishSensor(kind string, value any) error {
	level := strings.ToLower(strings.TrimSpace(kind))
	if level == "" {
		return ErrInvalidSensorKind
	}
	return p.send(KindSensor, p.registry.SensorTopic(level), map[string]any{codec.KeyValue: value})
}

// StateChanged publishes the new state.
func (p *Publisher) StateChanged(_, to alarm.State) {
	_ = p.PublishState(to)
}

// EventRaised publishes the event.
func (p *Publisher) EventRaised(e alarm.Event) {
	_ = p.PublishEvent(e)
}

func (p *Publisher) send(kind, topic string, fields map[string]any) error {
	payload, err := codec.Encode(fields)
	if err == nil {
		err = p.broker.Publish(topic, payload, QoS, Retained)
	}
	if p.observer != nil {
		p.observer.ObservePublish(kind, err)
	}
	if err != nil {
		p.logger.Warn("publish failed", "kind", kind, "topic", topic, "error", err)
		return fmt.Errorf("%w: %s on %q: %w", ErrPublish, kind, topic, err)
	}
	p.logger.Debug("published", "kind", kind, "topic", topic, "payload", string(payload))
	return nil
}
