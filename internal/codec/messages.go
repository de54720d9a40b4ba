package codec

import (
	"sort"
	"strings"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
)

// CommandPayload is a decoded command message.
type CommandPayload struct {
	Command alarm.Command

	// Code is nil when the payload carried no code (absent, null or empty).
	Code *string

	// Delay is the requested delay in seconds, or NoDelay.
	Delay int
}

// DecodeCommand decodes a command message.
//
// Accepted forms are {"command":"ARM_AWAY","code":"1234","delay":30}, where
// code may be a string or a number, and a bare command name such as ARM_AWAY.
// An unknown or missing command is a DecodeError.
func DecodeCommand(data []byte) (CommandPayload, error) {
	p := Decode(data)

	var name string
	if p.Structured() {
		f := p.Lookup(KeyCommand)
		if !f.Present {
			return CommandPayload{}, &DecodeError{Field: KeyCommand, Reason: "missing"}
		}
		name = f.Value
	} else {
		name = strings.TrimSpace(p.Raw())
	}

	cmd, err := alarm.ParseCommand(name)
	if err != nil {
		return CommandPayload{}, &DecodeError{Field: KeyCommand, Reason: "unknown command", Err: err}
	}

	out := CommandPayload{Command: cmd, Delay: p.Delay()}
	if f := p.Lookup(KeyCode); f.Present && f.Value != "" {
		code := f.Value
		out.Code = &code
	}

	return out, nil
}

// SensorReading is a decoded sensor message.
type SensorReading struct {
	// SubKind is the raw topic level the reading arrived on.
	SubKind string

	// Kind is set when SubKind names a known sensor kind, empty otherwise.
	Kind alarm.SensorKind

	// Value is the "value" field when present, otherwise the raw payload text.
	Value any

	Raw string
}

// Active reports whether the reading's value is truthy.
func (r SensorReading) Active() bool { return Truthy(r.Value) }

// DecodeSensor decodes a reading that arrived on the sensor topic for subKind.
// Unknown sub-kinds are passed through with an empty Kind.
func DecodeSensor(subKind string, data []byte) SensorReading {
	p := Decode(data)

	r := SensorReading{SubKind: subKind, Raw: p.Raw(), Value: p.Raw()}
	if v, ok := p.Value(KeyValue); ok {
		r.Value = v
	}
	if k, err := alarm.ParseSensorKind(subKind); err == nil {
		r.Kind = k
	}
	return r
}

// ParseSensorKind parses a sensor kind strictly, reporting a DecodeError for
// values outside the closed set.
func ParseSensorKind(s string) (alarm.SensorKind, error) {
	k, err := alarm.ParseSensorKind(s)
	if err != nil {
		return "", &DecodeError{Field: "kind", Reason: "unknown sensor kind", Err: err}
	}
	return k, nil
}

// PanelInstruction is one action requested on the panel command topic.
type PanelInstruction struct {
	Action alarm.PanelAction `json:"action"`
	Value  any               `json:"value,omitempty"`
}

// DecodePanelInstructions extracts the known panel actions from data.
//
// A JSON object yields one instruction per recognised key, ordered by
// action name; unknown keys are ignored. A bare action name such as "wake"
// yields a single instruction with value true.
func DecodePanelInstructions(data []byte) []PanelInstruction {
	p := Decode(data)

	if !p.Structured() {
		a, err := alarm.ParsePanelAction(p.Raw())
		if err != nil {
			return nil
		}
		return []PanelInstruction{{Action: a, Value: true}}
	}

	var out []PanelInstruction
	for _, key := range p.Keys() {
		a, err := alarm.ParsePanelAction(key)
		if err != nil {
			continue
		}
		v, _ := p.Value(key)
		out = append(out, PanelInstruction{Action: a, Value: v})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}
