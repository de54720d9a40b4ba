package codec

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCmd   alarm.Command
		wantCode  string // "-" means nil
		wantDelay int
	}{
		{"json arm away", `{"command":"ARM_AWAY"}`, alarm.CommandArmAway, "-", -1},
		{"json with code", `{"command":"DISARM","code":"1234"}`, alarm.CommandDisarm, "1234", -1},
		{"numeric code", `{"command":"DISARM","code":1234}`, alarm.CommandDisarm, "1234", -1},
		{"empty code is absent", `{"command":"DISARM","code":""}`, alarm.CommandDisarm, "-", -1},
		{"null code is absent", `{"command":"DISARM","code":null}`, alarm.CommandDisarm, "-", -1},
		{"with delay", `{"command":"ARM_HOME","delay":30}`, alarm.CommandArmHome, "-", 30},
		{"lowercase alias", `{"command":"arm_night"}`, alarm.CommandArmNight, "-", -1},
		{"bare command", "ARM_AWAY", alarm.CommandArmAway, "-", -1},
		{"bare with whitespace", " PANIC\n", alarm.CommandPanic, "-", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeCommand(%q) error = %v", tt.input, err)
			}
			if got.Command != tt.wantCmd {
				t.Errorf("Command = %q, want %q", got.Command, tt.wantCmd)
			}
			if got.Delay != tt.wantDelay {
				t.Errorf("Delay = %d, want %d", got.Delay, tt.wantDelay)
			}
			switch {
			case tt.wantCode == "-" && got.Code != nil:
				t.Errorf("Code = %q, want nil", *got.Code)
			case tt.wantCode != "-" && (got.Code == nil || *got.Code != tt.wantCode):
				t.Errorf("Code = %v, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestDecodeCommand_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantCause error
	}{
		{"missing command", `{"code":"1234"}`, KeyCommand, nil},
		{"unknown command", `{"command":"SELF_DESTRUCT"}`, KeyCommand, alarm.ErrUnknownCommand},
		{"unknown bare", "hello", KeyCommand, alarm.ErrUnknownCommand},
		{"empty", "", KeyCommand, alarm.ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommand([]byte(tt.input))
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("DecodeCommand(%q) error = %v, want ErrDecode", tt.input, err)
			}
			var de *DecodeError
			if !errors.As(err, &de) || de.Field != tt.wantField {
				t.Errorf("DecodeCommand(%q) field = %v, want %q", tt.input, de, tt.wantField)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("DecodeCommand(%q) error = %v, want cause %v", tt.input, err, tt.wantCause)
			}
		})
	}
}

func TestDecodeSensor(t *testing.T) {
	r := DecodeSensor("door", []byte(`{"value":true}`))
	if r.Kind != alarm.SensorDoor {
		t.Errorf("Kind = %q, want DOOR", r.Kind)
	}
	if !r.Active() {
		t.Error("Active() = false, want true")
	}

	r = DecodeSensor("face", []byte("jane"))
	if r.Kind != "" {
		t.Errorf("Kind = %q, want empty for unknown sub-kind", r.Kind)
	}
	if r.SubKind != "face" || r.Value != "jane" || r.Raw != "jane" {
		t.Errorf("reading = %+v, want raw passthrough", r)
	}

	r = DecodeSensor("motion", []byte(`{"value":"OFF"}`))
	if r.Active() {
		t.Error("Active() = true for OFF, want false")
	}

	r = DecodeSensor("window", []byte(`{"other":1}`))
	if r.Value != `{"other":1}` {
		t.Errorf("Value = %v, want raw payload when value key missing", r.Value)
	}
}

func TestParseSensorKind_Strict(t *testing.T) {
	if k, err := ParseSensorKind("camera"); err != nil || k != alarm.SensorCamera {
		t.Errorf("ParseSensorKind(camera) = (%q, %v), want CAMERA", k, err)
	}

	_, err := ParseSensorKind("qrcode")
	if !errors.Is(err, ErrDecode) || !errors.Is(err, alarm.ErrUnknownSensorKind) {
		t.Errorf("ParseSensorKind(qrcode) error = %v, want ErrDecode wrapping ErrUnknownSensorKind", err)
	}
}

func TestDecodePanelInstructions(t *testing.T) {
	got := DecodePanelInstructions([]byte(`{"wake":true,"speak":"hello","brightness":50,"audio":"http://x/a.mp3"}`))

	want := []alarm.PanelAction{alarm.ActionAudio, alarm.ActionSpeak, alarm.ActionWake}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%+v)", len(got), len(want), got)
	}
	for i, a := range want {
		if got[i].Action != a {
			t.Errorf("[%d].Action = %q, want %q", i, got[i].Action, a)
		}
	}
	if got[1].Value != "hello" {
		t.Errorf("speak value = %v, want hello", got[1].Value)
	}

	bare := DecodePanelInstructions([]byte("wake"))
	if len(bare) != 1 || bare[0].Action != alarm.ActionWake || bare[0].Value != true {
		t.Errorf("bare wake = %+v, want [{wake true}]", bare)
	}

	if none := DecodePanelInstructions([]byte("reboot")); none != nil {
		t.Errorf("unknown bare action = %+v, want nil", none)
	}
	if none := DecodePanelInstructions([]byte(`{"brightness":10}`)); len(none) != 0 {
		t.Errorf("no known keys = %+v, want empty", none)
	}
}
