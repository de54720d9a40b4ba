package alarm

import (
	"fmt"
	"strings"
)

// =============================================================================
// Sensor kinds
// =============================================================================

// SensorKind classifies a sensor publishing under the sensor topic family.
type SensorKind string

// Sensor kinds.
const (
	SensorGeneric SensorKind = "GENERIC"
	SensorDoor    SensorKind = "DOOR"
	SensorWindow  SensorKind = "WINDOW"
	SensorSound   SensorKind = "SOUND"
	SensorMotion  SensorKind = "MOTION"
	SensorCamera  SensorKind = "CAMERA"
)

// SensorKinds returns every known sensor kind in declaration order.
func SensorKinds() []SensorKind {
	return []SensorKind{SensorGeneric, SensorDoor, SensorWindow, SensorSound, SensorMotion, SensorCamera}
}

// ParseSensorKind parses a sensor kind case-insensitively.
func ParseSensorKind(s string) (SensorKind, error) {
	k := SensorKind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range SensorKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSensorKind, s)
}

// TopicLevel returns the lowercase topic level used for this kind, e.g. "door".
func (k SensorKind) TopicLevel() string {
	return strings.ToLower(string(k))
}

// Intrusion reports whether a trip from this kind of sensor can trigger an armed panel.
func (k SensorKind) Intrusion() bool {
	switch k {
	case SensorDoor, SensorWindow, SensorMotion:
		return true
	default:
		return false
	}
}

// =============================================================================
// Commands
// =============================================================================

// Command is a request to change the panel state.
type Command string

// Panel commands.
const (
	CommandArmHome         Command = "ARM_HOME"
	CommandArmNight        Command = "ARM_NIGHT"
	CommandArmCustomBypass Command = "ARM_CUSTOM_BYPASS"
	CommandArmAway         Command = "ARM_AWAY"
	CommandDisarm          Command = "DISARM"
	CommandPanic           Command = "PANIC"
)

// Commands returns every known command in declaration order.
func Commands() []Command {
	return []Command{CommandArmHome, CommandArmNight, CommandArmCustomBypass, CommandArmAway, CommandDisarm, CommandPanic}
}

// ParseCommand parses a command name. Matching is case-insensitive so the
// lowercase state-style names ("arm_away", "disarm") are accepted too.
func ParseCommand(s string) (Command, error) {
	c := Command(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Commands() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// IsArm reports whether the command requests one of the armed modes.
func (c Command) IsArm() bool {
	switch c {
	case CommandArmHome, CommandArmNight, CommandArmCustomBypass, CommandArmAway:
		return true
	default:
		return false
	}
}

// ArmedState returns the armed state an arm command leads to.
// The second result is false for non-arm commands.
func (c Command) ArmedState() (State, bool) {
	switch c {
	case CommandArmHome:
		return StateArmedHome, true
	case CommandArmNight:
		return StateArmedNight, true
	case CommandArmCustomBypass:
		return StateArmedCustomBypass, true
	case CommandArmAway:
		return StateArmedAway, true
	default:
		return "", false
	}
}

// =============================================================================
// States
// =============================================================================

// State is the panel state as published on the state topic.
type State string

// Panel states.
const (
	StateDisarmed          State = "disarmed"
	StateArmedAway         State = "armed_away"
	StateArmedHome         State = "armed_home"
	StateArmedNight        State = "armed_night"
	StateArmedCustomBypass State = "armed_custom_bypass"
	StatePending           State = "pending"
	StateArming            State = "arming"
	StateTriggered         State = "triggered"
	StateDisabled          State = "disabled"
)

// States returns every known state in declaration order.
func States() []State {
	return []State{
		StateDisarmed, StateArmedAway, StateArmedHome, StateArmedNight, StateArmedCustomBypass,
		StatePending, StateArming, StateTriggered, StateDisabled,
	}
}

// ParseState parses a state name case-insensitively.
func ParseState(s string) (State, error) {
	st := State(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range States() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// IsArmed reports whether the state is one of the four armed modes.
func (s State) IsArmed() bool {
	switch s {
	case StateArmedAway, StateArmedHome, StateArmedNight, StateArmedCustomBypass:
		return true
	default:
		return false
	}
}

// Locked reports whether the panel refuses commands in this state,
// subject to the dispatcher's lockout policy.
func (s State) Locked() bool {
	return s == StateTriggered || s == StateDisabled
}

// =============================================================================
// Events
// =============================================================================

// Event is a notification published on the event topic.
type Event string

// Panel events.
const (
	EventInvalidCode       Event = "invalid_code_provided"
	EventNoCode            Event = "no_code_provided"
	EventFailedToArm       Event = "failed_to_arm"
	EventTrigger           Event = "trigger"
	EventSystemDisabled    Event = "system_disabled"
	EventCommandNotAllowed Event = "command_not_allowed"
	EventUnknown           Event = "unknown"
)

// Events returns every known event in declaration order.
func Events() []Event {
	return []Event{
		EventInvalidCode, EventNoCode, EventFailedToArm, EventTrigger,
		EventSystemDisabled, EventCommandNotAllowed, EventUnknown,
	}
}

// ParseEvent parses an event name case-insensitively.
func ParseEvent(s string) (Event, error) {
	e := Event(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Events() {
		if e == known {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

// =============================================================================
// Panel actions
// =============================================================================

// PanelAction is an instruction for the wall panel itself, received on the
// panel command topic (screen wake, audio, notifications and so on).
type PanelAction string

// Panel actions.
const (
	ActionWake         PanelAction = "wake"
	ActionDashboard    PanelAction = "dashboard"
	ActionAudio        PanelAction = "audio"
	ActionSpeak        PanelAction = "speak"
	ActionNotification PanelAction = "notification"
	ActionAlert        PanelAction = "alert"
	ActionCapture      PanelAction = "capture"
	ActionWeather      PanelAction = "weather"
	ActionSun          PanelAction = "sun"
)

// PanelActions returns every known panel action in declaration order.
func PanelActions() []PanelAction {
	return []PanelAction{
		ActionWake, ActionDashboard, ActionAudio, ActionSpeak, ActionNotification,
		ActionAlert, ActionCapture, ActionWeather, ActionSun,
	}
}

// ParsePanelAction parses a panel action name case-insensitively.
func ParsePanelAction(s string) (PanelAction, error) {
	a := PanelAction(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range PanelActions() {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPanelAction, s)
}
