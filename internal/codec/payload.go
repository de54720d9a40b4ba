package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Recognised payload keys.
const (
	KeyState   = "state"
	KeyEvent   = "event"
	KeyDelay   = "delay"
	KeyCommand = "command"
	KeyCode    = "code"
	KeyValue   = "value"
)

// NoDelay is returned by the delay accessors when no usable delay is present.
const NoDelay = -1

// Field is the result of a best-effort lookup. Present is false when the key
// is missing, null, or the payload is not a JSON object.
type Field struct {
	Value   string
	Present bool
}

// Payload is a decoded inbound payload. The zero value is an empty passthrough.
type Payload struct {
	raw    string
	fields map[string]any
}

// Decode parses data as a flat JSON object. It never fails: anything that is
// not a JSON object yields a passthrough Payload carrying only the raw text.
func Decode(data []byte) Payload {
	p, err := ParseStrict(data)
	if err != nil {
		return Payload{raw: string(data)}
	}
	return p
}

// ParseStrict parses data as a JSON object and reports a DecodeError when it
// is not one.
func ParseStrict(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Payload{raw: string(data)}, &DecodeError{Reason: "payload is not a JSON object", Err: err}
	}
	if fields == nil {
		return Payload{raw: string(data)}, &DecodeError{Reason: "payload is JSON null"}
	}
	if dec.More() {
		return Payload{raw: string(data)}, &DecodeError{Reason: "trailing data after JSON object"}
	}

	return Payload{raw: string(data), fields: fields}, nil
}

// Raw returns the payload text exactly as received.
func (p Payload) Raw() string { return p.raw }

// Structured reports whether the payload decoded to a JSON object.
func (p Payload) Structured() bool { return p.fields != nil }

// Keys returns the payload's keys, sorted. Empty for passthrough payloads.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p.fields))
	for k := range p.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the decoded value for key. Numbers are json.Number.
func (p Payload) Value(key string) (any, bool) {
	v, ok := p.fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Lookup returns key's value rendered as a string.
func (p Payload) Lookup(key string) Field {
	v, ok := p.Value(key)
	if !ok {
		return Field{}
	}
	return Field{Value: stringify(v), Present: true}
}

// Event returns the "event" field, or the raw payload when it is absent.
// The fallback is not evidence that an event field existed.
func (p Payload) Event() string { return p.fieldOrRaw(KeyEvent) }

// State returns the "state" field, or the raw payload when it is absent.
func (p Payload) State() string { return p.fieldOrRaw(KeyState) }

// Delay returns the "delay" field as non-negative whole seconds, or NoDelay.
// Numeric strings are accepted.
func (p Payload) Delay() int {
	v, ok := p.Value(KeyDelay)
	if !ok {
		return NoDelay
	}
	return toDelay(v)
}

func (p Payload) fieldOrRaw(key string) string {
	if f := p.Lookup(key); f.Present {
		return f.Value
	}
	return p.raw
}

// ExtractEvent decodes data and returns its event, falling back to the raw text.
func ExtractEvent(data []byte) string { return Decode(data).Event() }

// ExtractState decodes data and returns its state, falling back to the raw text.
func ExtractState(data []byte) string { return Decode(data).State() }

// ExtractDelay decodes data and returns its delay, or NoDelay.
func ExtractDelay(data []byte) int { return Decode(data).Delay() }

// Encode serialises fields as a flat JSON object.
func Encode(fields map[string]any) ([]byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return data, nil
}

// stringify renders a decoded JSON value as text.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func toDelay(v any) int {
	var f float64
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return clampDelay(n)
		}
		parsed, err := t.Float64()
		if err != nil {
			return NoDelay
		}
		f = parsed
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return NoDelay
		}
		return clampDelay(n)
	case float64:
		f = t
	case int:
		return clampDelay(int64(t))
	default:
		return NoDelay
	}

	if math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return NoDelay
	}
	return clampDelay(int64(f))
}

func clampDelay(n int64) int {
	if n < 0 || n > math.MaxInt32 {
		return NoDelay
	}
	return int(n)
}

// Truthy interprets a sensor value as active or inactive.
// Booleans, non-zero numbers and the strings on/open/true/1/detected/triggered are active.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "on", "open", "true", "1", "detected", "triggered", "active":
			return true
		}
	}
	return false
}
