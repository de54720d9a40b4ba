package dispatch

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
)

const commandTopic = "home/alarm/set"

func wantRejected(t *testing.T, err error, want Reason) {
	t.Helper()
	var rej *RejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("Dispatch() error = %v, want *RejectedError(%s)", err, want)
	}
	if rej.Reason != want {
		t.Errorf("Dispatch() reason = %s, want %s", rej.Reason, want)
	}
	if !errors.Is(err, ErrRejected) {
		t.Errorf("errors.Is(err, ErrRejected) = false")
	}
}

// =============================================================================
// Scenarios
// =============================================================================

func TestDispatch_ArmAwayWithoutConfiguredCode(t *testing.T) {
	d := New(commandTopic, LockoutArmOnly)

	got, err := d.Dispatch(Request{
		Topic:        commandTopic,
		Command:      alarm.CommandArmAway,
		Delay:        -1,
		CurrentState: alarm.StateDisarmed,
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	want := Action{Command: alarm.CommandArmAway, Delay: -1}
	if got != want {
		t.Errorf("Dispatch() = %+v, want %+v", got, want)
	}
}

func TestDispatch_WrongCode(t *testing.T) {
	d := New(commandTopic, LockoutArmOnly)

	_, err := d.Dispatch(Request{
		Topic:          commandTopic,
		Command:        alarm.CommandDisarm,
		Delay:          -1,
		CurrentState:   alarm.StateArmedAway,
		ProvidedCode:   Code("1234"),
		ConfiguredCode: Code("9999"),
	})
	wantRejected(t, err, ReasonInvalidCode)
}

func TestDispatch_UnrecognizedTopic(t *testing.T) {
	d := New(commandTopic, LockoutArmOnly)

	for _, topic := range []string{"home/alarm/config", "", "home/alarm/set/x"} {
		_, err := d.Dispatch(Request{Topic: topic, Command: alarm.CommandDisarm, CurrentState: alarm.StateDisarmed})
		wantRejected(t, err, ReasonUnrecognized)
	}

	if _, ok := ReasonUnrecognized.Event(); ok {
		t.Error("ReasonUnrecognized.Event() ok = true, want no event")
	}
}

// =============================================================================
// Properties
// =============================================================================

func TestDispatch_CorrectCodeAcrossStates(t *testing.T) {
	d := New(commandTopic, LockoutArmOnly)

	for _, state := range alarm.States() {
		for _, cmd := range alarm.Commands() {
			for _, delay := range []int{-1, 0, 45} {
				got, err := d.Dispatch(Request{
					Topic:          commandTopic,
					Command:        cmd,
					Delay:          delay,
					CurrentState:   state,
					ProvidedCode:   Code("1234"),
					ConfiguredCode: Code("1234"),
				})

				if cmd.IsArm() && (state == alarm.StateTriggered || state == alarm.StateDisabled) {
					wantRejected(t, err, ReasonCommandNotAllowed)
					continue
				}
				if err != nil {
					t.Errorf("Dispatch(%s in %s) error = %v", cmd, state, err)
					continue
				}
				if got.Command != cmd || got.Delay != delay {
					t.Errorf("Dispatch(%s in %s) = %+v, want {%s %d}", cmd, state, got, cmd, delay)
				}
			}
		}
	}
}

func TestDispatch_CodeCheckPrecedesStateCheck(t *testing.T) {
	d := New(commandTopic, LockoutAllCommands)

	for _, state := range alarm.States() {
		for _, cmd := range alarm.Commands() {
			_, err := d.Dispatch(Request{
				Topic:          commandTopic,
				Command:        cmd,
				CurrentState:   state,
				ConfiguredCode: Code("1234"),
			})
			wantRejected(t, err, ReasonNoCode)

			_, err = d.Dispatch(Request{
				Topic:          commandTopic,
				Command:        cmd,
				CurrentState:   state,
				ProvidedCode:   Code("0000"),
				ConfiguredCode: Code("1234"),
			})
			wantRejected(t, err, ReasonInvalidCode)
		}
	}
}

func TestDispatch_EmptyConfiguredCodeMeansNone(t *testing.T) {
	d := New(commandTopic, LockoutArmOnly)
	empty := ""

	_, err := d.Dispatch(Request{
		Topic:          commandTopic,
		Command:        alarm.CommandArmHome,
		CurrentState:   alarm.StateDisarmed,
		ConfiguredCode: &empty,
	})
	if err != nil {
		t.Errorf("Dispatch() error = %v, want nil", err)
	}

	// A code supplied when none is configured is ignored.
	_, err = d.Dispatch(Request{
		Topic:        commandTopic,
		Command:      alarm.CommandArmHome,
		CurrentState: alarm.StateDisarmed,
		ProvidedCode: Code("1111"),
	})
	if err != nil {
		t.Errorf("Dispatch() with unneeded code error = %v, want nil", err)
	}
}

func TestDispatch_LockoutPolicy(t *testing.T) {
	tests := []struct {
		policy  LockoutPolicy
		cmd     alarm.Command
		state   alarm.State
		allowed bool
	}{
		{LockoutArmOnly, alarm.CommandDisarm, alarm.StateTriggered, true},
		{LockoutArmOnly, alarm.CommandPanic, alarm.StateDisabled, true},
		{LockoutArmOnly, alarm.CommandArmNight, alarm.StateDisabled, false},
		{LockoutArmOnly, alarm.CommandArmAway, alarm.StatePending, true},
		{LockoutAllCommands, alarm.CommandDisarm, alarm.StateTriggered, false},
		{LockoutAllCommands, alarm.CommandPanic, alarm.StateDisabled, false},
		{LockoutAllCommands, alarm.CommandDisarm, alarm.StateArming, true},
	}

	for _, tt := range tests {
		d := New(commandTopic, tt.policy)
		_, err := d.Dispatch(Request{Topic: commandTopic, Command: tt.cmd, CurrentState: tt.state})
		if tt.allowed && err != nil {
			t.Errorf("%s: Dispatch(%s in %s) error = %v, want allowed", tt.policy, tt.cmd, tt.state, err)
		}
		if !tt.allowed {
			wantRejected(t, err, ReasonCommandNotAllowed)
		}
	}
}

func TestParseLockoutPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    LockoutPolicy
		wantErr bool
	}{
		{"", LockoutArmOnly, false},
		{"arm_only", LockoutArmOnly, false},
		{"all_commands", LockoutAllCommands, false},
		{"sometimes", LockoutArmOnly, true},
	}

	for _, tt := range tests {
		got, err := ParseLockoutPolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLockoutPolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnknownPolicy) {
			t.Errorf("ParseLockoutPolicy(%q) error = %v, want ErrUnknownPolicy", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseLockoutPolicy(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !tt.wantErr && tt.input != "" && got.String() != tt.input {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.input)
		}
	}
}

func TestReason_Event(t *testing.T) {
	tests := map[Reason]alarm.Event{
		ReasonNoCode:            alarm.EventNoCode,
		ReasonInvalidCode:       alarm.EventInvalidCode,
		ReasonCommandNotAllowed: alarm.EventCommandNotAllowed,
	}
	for r, want := range tests {
		got, ok := r.Event()
		if !ok || got != want {
			t.Errorf("%s.Event() = (%q, %v), want (%q, true)", r, got, ok, want)
		}
	}
}

func TestCode(t *testing.T) {
	if Code("") != nil {
		t.Error("Code(\"\") != nil")
	}
	if c := Code("42"); c == nil || *c != "42" {
		t.Errorf("Code(42) = %v", c)
	}
}
