package topics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/config"
)

// Topic level suffixes appended to the panel topic.
const (
	panelCommandLevel = "command"
	panelSensorLevel  = "sensor"
)

// Kind is the family a topic belongs to.
type Kind int

// Topic families.
const (
	KindUnrecognized Kind = iota
	KindCommand
	KindState
	KindEvent
	KindConfig
	KindSensor
	KindPanelCommand
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindState:
		return "state"
	case KindEvent:
		return "event"
	case KindConfig:
		return "config"
	case KindSensor:
		return "sensor"
	case KindPanelCommand:
		return "panel_command"
	default:
		return "unrecognized"
	}
}

// Resolution is the result of resolving an inbound topic.
type Resolution struct {
	Kind Kind

	// SubKind is the raw sensor sub-kind for KindSensor, empty otherwise.
	SubKind string
}

// Registry is the immutable topic taxonomy. Safe for concurrent use.
type Registry struct {
	command string
	state   string
	event   string
	config  string
	sensor  string
	panel   string

	sensors       []string
	panelSensors  []string
	panelCommands bool
}

// New builds a Registry from the alarm configuration.
//
// Topics must be non-empty, free of MQTT wildcards and distinct. Sensor and
// panel sensor names are lowercased, deduplicated and sorted so the registry
// does not depend on configuration order.
func New(cfg config.AlarmConfig) (*Registry, error) {
	r := &Registry{
		command:       strings.TrimSpace(cfg.Topics.Command),
		state:         strings.TrimSpace(cfg.Topics.State),
		event:         strings.TrimSpace(cfg.Topics.Event),
		config:        strings.TrimSpace(cfg.Topics.Config),
		sensor:        strings.TrimSuffix(strings.TrimSpace(cfg.Topics.Sensor), "/"),
		panel:         strings.TrimSuffix(strings.TrimSpace(cfg.Topics.Panel), "/"),
		panelCommands: cfg.PanelCommands,
	}

	if err := r.validate(); err != nil {
		return nil, err
	}

	var err error
	if r.sensors, err = sensorNames(cfg.Sensors); err != nil {
		return nil, err
	}
	if r.panelSensors, err = sensorNames(cfg.PanelSensors); err != nil {
		return nil, err
	}

	return r, nil
}

// sensorNames lowercases, deduplicates and sorts sensor sub-kinds.
func sensorNames(names []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{}, len(names))
	for _, s := range names {
		name := strings.ToLower(strings.TrimSpace(s))
		if name == "" || strings.ContainsAny(name, "+#/") {
			return nil, fmt.Errorf("%w: sensor name %q", ErrInvalidTopic, s)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (r *Registry) validate() error {
	named := []struct {
		name, topic string
	}{
		{"command", r.command},
		{"state", r.state},
		{"event", r.event},
		{"config", r.config},
		{"sensor", r.sensor},
		{"panel", r.panel},
		{"panel command", r.PanelCommandTopic()},
	}

	seen := make(map[string]string, len(named))
	for _, n := range named {
		if n.topic == "" {
			return fmt.Errorf("%w: %s topic is empty", ErrInvalidTopic, n.name)
		}
		if strings.ContainsAny(n.topic, "+#") {
			return fmt.Errorf("%w: %s topic %q contains a wildcard", ErrInvalidTopic, n.name, n.topic)
		}
		if prev, dup := seen[n.topic]; dup {
			return fmt.Errorf("%w: %s topic %q duplicates %s topic", ErrInvalidTopic, n.name, n.topic, prev)
		}
		seen[n.topic] = n.name
	}

	return nil
}

// Command returns the topic commands are received on.
func (r *Registry) Command() string { return r.command }

// State returns the topic panel state is published on.
func (r *Registry) State() string { return r.state }

// Event returns the topic panel events are published on.
func (r *Registry) Event() string { return r.event }

// Config returns the topic runtime configuration is received on.
func (r *Registry) Config() string { return r.config }

// SensorBase returns the prefix of the sensor topic family.
func (r *Registry) SensorBase() string { return r.sensor }

// Panel returns the panel-specific base topic.
func (r *Registry) Panel() string { return r.panel }

// SensorTopic returns the topic for a sensor sub-kind, e.g. home/alarm/sensor/door.
func (r *Registry) SensorTopic(subKind string) string {
	return r.sensor + "/" + subKind
}

// PanelCommandTopic returns the topic panel instructions are received on.
func (r *Registry) PanelCommandTopic() string {
	return r.panel + "/" + panelCommandLevel
}

// PanelSensorTopic returns the panel-local sensor topic, e.g. alarmpanel/sensor/motion.
func (r *Registry) PanelSensorTopic(subKind string) string {
	return r.panel + "/" + panelSensorLevel + "/" + subKind
}

// Sensors returns the configured sensor sub-kinds, sorted.
func (r *Registry) Sensors() []string {
	out := make([]string, len(r.sensors))
	copy(out, r.sensors)
	return out
}

// PanelSensors returns the panel-local sensor sub-kinds, sorted.
func (r *Registry) PanelSensors() []string {
	out := make([]string, len(r.panelSensors))
	copy(out, r.panelSensors)
	return out
}

// PanelCommandsEnabled reports whether the panel command topic is in use.
func (r *Registry) PanelCommandsEnabled() bool { return r.panelCommands }

// Resolve maps a concrete topic to its family.
//
// Exact topics are matched first. The sensor family then matches any topic
// below the sensor base or below <panel>/sensor; the remainder is returned
// as SubKind. Anything else wraps ErrUnrecognized.
func (r *Registry) Resolve(topic string) (Resolution, error) {
	switch topic {
	case r.command:
		return Resolution{Kind: KindCommand}, nil
	case r.state:
		return Resolution{Kind: KindState}, nil
	case r.event:
		return Resolution{Kind: KindEvent}, nil
	case r.config:
		return Resolution{Kind: KindConfig}, nil
	case r.PanelCommandTopic():
		return Resolution{Kind: KindPanelCommand}, nil
	}

	for _, prefix := range []string{r.sensor + "/", r.panel + "/" + panelSensorLevel + "/"} {
		if sub, ok := strings.CutPrefix(topic, prefix); ok && sub != "" {
			return Resolution{Kind: KindSensor, SubKind: sub}, nil
		}
	}

	return Resolution{Kind: KindUnrecognized}, fmt.Errorf("%w: %q", ErrUnrecognized, topic)
}
