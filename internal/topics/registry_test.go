package topics

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/config"
)

func defaultAlarmConfig() config.AlarmConfig {
	return config.AlarmConfig{
		Topics: config.TopicsConfig{
			Command: "home/alarm/set",
			State:   "home/alarm",
			Event:   "home/alarm/event",
			Config:  "home/alarm/config",
			Sensor:  "home/alarm/sensor",
			Panel:   "alarmpanel",
		},
		Sensors:       []string{"window", "door"},
		PanelSensors:  []string{"qrcode", "face"},
		PanelCommands: true,
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(defaultAlarmConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_Accessors(t *testing.T) {
	r := newTestRegistry(t)

	checks := map[string][2]string{
		"Command":           {r.Command(), "home/alarm/set"},
		"State":             {r.State(), "home/alarm"},
		"Event":             {r.Event(), "home/alarm/event"},
		"Config":            {r.Config(), "home/alarm/config"},
		"SensorBase":        {r.SensorBase(), "home/alarm/sensor"},
		"Panel":             {r.Panel(), "alarmpanel"},
		"PanelCommandTopic": {r.PanelCommandTopic(), "alarmpanel/command"},
		"SensorTopic":       {r.SensorTopic("door"), "home/alarm/sensor/door"},
		"PanelSensorTopic":  {r.PanelSensorTopic("face"), "alarmpanel/sensor/face"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s() = %q, want %q", name, c[0], c[1])
		}
	}

	if !r.PanelCommandsEnabled() {
		t.Error("PanelCommandsEnabled() = false, want true")
	}
}

func TestNew_SensorsSortedAndDeduplicated(t *testing.T) {
	cfg := defaultAlarmConfig()
	cfg.Sensors = []string{"Window", "door", "motion", "DOOR"}

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := []string{"door", "motion", "window"}
	if got := r.Sensors(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sensors() = %v, want %v", got, want)
	}

	// The returned slice is a copy.
	got := r.Sensors()
	got[0] = "mutated"
	if r.Sensors()[0] != "door" {
		t.Error("Sensors() exposes internal slice")
	}
}

func TestNew_PanelSensors(t *testing.T) {
	cfg := defaultAlarmConfig()
	cfg.PanelSensors = []string{"QRCode", "motion", "face", "qrcode"}

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := []string{"face", "motion", "qrcode"}
	if got := r.PanelSensors(); !reflect.DeepEqual(got, want) {
		t.Errorf("PanelSensors() = %v, want %v", got, want)
	}

	cfg.PanelSensors = nil
	r, err = New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := r.PanelSensors(); len(got) != 0 {
		t.Errorf("PanelSensors() = %v, want none", got)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AlarmConfig)
	}{
		{"empty command", func(c *config.AlarmConfig) { c.Topics.Command = "" }},
		{"empty state", func(c *config.AlarmConfig) { c.Topics.State = "  " }},
		{"empty panel", func(c *config.AlarmConfig) { c.Topics.Panel = "" }},
		{"wildcard plus", func(c *config.AlarmConfig) { c.Topics.Event = "home/+/event" }},
		{"wildcard hash", func(c *config.AlarmConfig) { c.Topics.Sensor = "home/#" }},
		{"duplicate", func(c *config.AlarmConfig) { c.Topics.Event = c.Topics.Config }},
		{"panel command collides", func(c *config.AlarmConfig) {
			c.Topics.Panel = "home/alarm"
			c.Topics.Command = "home/alarm/command"
		}},
		{"sensor with slash", func(c *config.AlarmConfig) { c.Sensors = []string{"door/front"} }},
		{"empty sensor", func(c *config.AlarmConfig) { c.Sensors = []string{""} }},
		{"panel sensor with wildcard", func(c *config.AlarmConfig) { c.PanelSensors = []string{"+"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultAlarmConfig()
			tt.mutate(&cfg)

			_, err := New(cfg)
			if !errors.Is(err, ErrInvalidTopic) {
				t.Errorf("New() error = %v, want ErrInvalidTopic", err)
			}
		})
	}
}

// =============================================================================
// Resolve
// =============================================================================

func TestResolve(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		topic       string
		wantKind    Kind
		wantSubKind string
		wantErr     bool
	}{
		{"home/alarm/set", KindCommand, "", false},
		{"home/alarm", KindState, "", false},
		{"home/alarm/event", KindEvent, "", false},
		{"home/alarm/config", KindConfig, "", false},
		{"alarmpanel/command", KindPanelCommand, "", false},
		{"home/alarm/sensor/door", KindSensor, "door", false},
		{"home/alarm/sensor/smoke", KindSensor, "smoke", false},
		{"home/alarm/sensor/garage/side", KindSensor, "garage/side", false},
		{"alarmpanel/sensor/face", KindSensor, "face", false},
		{"alarmpanel/sensor/qrcode", KindSensor, "qrcode", false},
		{"home/alarm/sensor", KindUnrecognized, "", true},
		{"home/alarm/sensor/", KindUnrecognized, "", true},
		{"alarmpanel", KindUnrecognized, "", true},
		{"home/alarm/set/extra", KindUnrecognized, "", true},
		{"other/topic", KindUnrecognized, "", true},
		{"", KindUnrecognized, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := r.Resolve(tt.topic)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.topic, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnrecognized) {
				t.Errorf("Resolve(%q) error = %v, want ErrUnrecognized", tt.topic, err)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Resolve(%q).Kind = %v, want %v", tt.topic, got.Kind, tt.wantKind)
			}
			if got.SubKind != tt.wantSubKind {
				t.Errorf("Resolve(%q).SubKind = %q, want %q", tt.topic, got.SubKind, tt.wantSubKind)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := newTestRegistry(t)
	first, _ := r.Resolve("home/alarm/sensor/door")
	for range 100 {
		got, _ := r.Resolve("home/alarm/sensor/door")
		if got != first {
			t.Fatalf("Resolve() = %+v, want %+v", got, first)
		}
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindCommand:      "command",
		KindState:        "state",
		KindEvent:        "event",
		KindConfig:       "config",
		KindSensor:       "sensor",
		KindPanelCommand: "panel_command",
		KindUnrecognized: "unrecognized",
		Kind(99):         "unrecognized",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
