package codec

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

// =============================================================================
// Decode / ParseStrict
// =============================================================================

func TestDecode_Passthrough(t *testing.T) {
	inputs := []string{"not json", "", "armed_away", "[1,2,3]", `"quoted"`, "42", "null", `{"state":`, `{"a":1} trailing`}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			p := Decode([]byte(in))
			if p.Structured() {
				t.Errorf("Decode(%q).Structured() = true, want false", in)
			}
			if p.Raw() != in {
				t.Errorf("Decode(%q).Raw() = %q, want %q", in, p.Raw(), in)
			}
			if f := p.Lookup(KeyState); f.Present {
				t.Errorf("Decode(%q).Lookup(state) present, want absent", in)
			}
			if len(p.Keys()) != 0 {
				t.Errorf("Decode(%q).Keys() = %v, want empty", in, p.Keys())
			}
		})
	}
}

func TestParseStrict(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{`{"state":"armed_away"}`, false},
		{`{}`, false},
		{" {\"a\":1} \n", false},
		{"not json", true},
		{"", true},
		{"null", true},
		{"[1]", true},
		{`{"a":1}{"b":2}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParseStrict([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrict(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrDecode) {
					t.Errorf("ParseStrict(%q) error = %v, want ErrDecode", tt.input, err)
				}
				var de *DecodeError
				if !errors.As(err, &de) {
					t.Errorf("ParseStrict(%q) error is not *DecodeError", tt.input)
				}
				return
			}
			if !p.Structured() {
				t.Errorf("ParseStrict(%q).Structured() = false", tt.input)
			}
		})
	}
}

func TestPayload_ZeroValue(t *testing.T) {
	var p Payload
	if p.Structured() || p.Raw() != "" || p.Delay() != NoDelay || p.State() != "" {
		t.Errorf("zero Payload = %+v, want empty passthrough", p)
	}
}

// =============================================================================
// Field extraction
// =============================================================================

func TestExtractState(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"not json", "not json"},
		{`{"state":"armed_away"}`, "armed_away"},
		{`{"event":"trigger"}`, `{"event":"trigger"}`},
		{`{"state":null}`, `{"state":null}`},
		{`{"state":3}`, "3"},
		{`{"state":true}`, "true"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExtractState([]byte(tt.input)); got != tt.want {
				t.Errorf("ExtractState(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractEvent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"trigger", "trigger"},
		{`{"event":"no_code_provided"}`, "no_code_provided"},
		{`{"state":"disarmed"}`, `{"state":"disarmed"}`},
		{`{"event":{"nested":1}}`, `{"nested":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExtractEvent([]byte(tt.input)); got != tt.want {
				t.Errorf("ExtractEvent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractDelay(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"{}", -1},
		{`{"delay":5}`, 5},
		{`{"delay":0}`, 0},
		{`{"delay":"30"}`, 30},
		{`{"delay":12.0}`, 12},
		{`{"delay":12.9}`, 12},
		{`{"delay":-3}`, -1},
		{`{"delay":"soon"}`, -1},
		{`{"delay":null}`, -1},
		{`{"delay":true}`, -1},
		{`{"delay":1e20}`, -1},
		{"not json", -1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExtractDelay([]byte(tt.input)); got != tt.want {
				t.Errorf("ExtractDelay(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestLookup_Independent(t *testing.T) {
	p := Decode([]byte(`{"state":"pending","delay":"bogus","code":1234}`))

	if got := p.State(); got != "pending" {
		t.Errorf("State() = %q, want pending", got)
	}
	if got := p.Delay(); got != NoDelay {
		t.Errorf("Delay() = %d, want %d", got, NoDelay)
	}
	if f := p.Lookup(KeyCode); !f.Present || f.Value != "1234" {
		t.Errorf("Lookup(code) = %+v, want {1234 true}", f)
	}
	if f := p.Lookup("missing"); f.Present {
		t.Errorf("Lookup(missing) = %+v, want absent", f)
	}
	if want := []string{"code", "delay", "state"}; !reflect.DeepEqual(p.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", p.Keys(), want)
	}
}

// =============================================================================
// Encode
// =============================================================================

func TestEncode_RoundTrip(t *testing.T) {
	data, err := Encode(map[string]any{KeyState: "armed_away"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := Decode(data).State(); got != "armed_away" {
		t.Errorf("Decode(Encode(state)).State() = %q, want armed_away", got)
	}

	data, err = Encode(map[string]any{KeyEvent: "trigger", KeyDelay: 10, KeyValue: true})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	p := Decode(data)
	if p.Event() != "trigger" || p.Delay() != 10 || p.Lookup(KeyValue).Value != "true" {
		t.Errorf("round trip = event %q delay %d value %q", p.Event(), p.Delay(), p.Lookup(KeyValue).Value)
	}
}

func TestEncode_Nil(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil) error = %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Encode(nil) = %s, want {}", data)
	}
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := Encode(map[string]any{"bad": make(chan int)})
	if err == nil {
		t.Error("Encode() with channel value error = nil, want error")
	}
}

// =============================================================================
// Truthy
// =============================================================================

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{true, true},
		{false, false},
		{json.Number("1"), true},
		{json.Number("0"), false},
		{1.5, true},
		{0.0, false},
		{3, true},
		{"ON", true},
		{"open", true},
		{"detected", true},
		{"off", false},
		{"closed", false},
		{nil, false},
		{map[string]any{}, false},
	}

	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
