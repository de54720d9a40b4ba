package controller

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
)

// Machine events.
const (
	EventBeginArming     = "begin_arming"
	EventArmHome         = "arm_home"
	EventArmAway         = "arm_away"
	EventArmNight        = "arm_night"
	EventArmCustomBypass = "arm_custom_bypass"
	EventDisarm          = "disarm"
	EventTrip            = "trip"
	EventTrigger         = "trigger"
	EventDisable         = "disable"
	EventEnable          = "enable"
)

// armEvents maps an armed state to the event entering it.
var armEvents = map[alarm.State]string{
	alarm.StateArmedHome:         EventArmHome,
	alarm.StateArmedAway:         EventArmAway,
	alarm.StateArmedNight:        EventArmNight,
	alarm.StateArmedCustomBypass: EventArmCustomBypass,
}

type transition struct {
	from, to alarm.State
}

func names(states ...alarm.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}

// newMachine builds the alarm state machine. Committed transitions are
// appended to *log by the enter_state callback.
func newMachine(initial alarm.State, log *[]transition) *fsm.FSM {
	armed := []alarm.State{
		alarm.StateArmedHome, alarm.StateArmedAway, alarm.StateArmedNight, alarm.StateArmedCustomBypass,
	}
	armable := append([]alarm.State{alarm.StateDisarmed, alarm.StateArming}, armed...)
	active := append(append([]alarm.State{}, armable...), alarm.StatePending, alarm.StateTriggered)

	events := fsm.Events{
		{Name: EventBeginArming, Src: names(armable...), Dst: string(alarm.StateArming)},
		{Name: EventDisarm, Src: names(active...), Dst: string(alarm.StateDisarmed)},
		{Name: EventTrip, Src: names(armed...), Dst: string(alarm.StatePending)},
		{Name: EventTrigger, Src: names(active...), Dst: string(alarm.StateTriggered)},
		{Name: EventDisable, Src: names(active...), Dst: string(alarm.StateDisabled)},
		{Name: EventEnable, Src: names(alarm.StateDisabled), Dst: string(alarm.StateDisarmed)},
	}
	for state, name := range armEvents {
		events = append(events, fsm.EventDesc{Name: name, Src: names(armable...), Dst: string(state)})
	}

	callbacks := fsm.Callbacks{
		// Guard: motion does not trip the panel in armed_home.
		"before_" + EventTrip: wrapEvent(guardTrip),

		"enter_state": func(_ context.Context, e *fsm.Event) {
			*log = append(*log, transition{from: alarm.State(e.Src), to: alarm.State(e.Dst)})
		},
	}

	return fsm.NewFSM(string(initial), events, callbacks)
}

// wrapEvent adapts an error-returning callback, recording the error on the event.
func wrapEvent(fn func(ctx context.Context, e *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, e *fsm.Event) {
		if err := fn(ctx, e); err != nil {
			e.Err = err
		}
	}
}

func guardTrip(_ context.Context, e *fsm.Event) error {
	if len(e.Args) == 0 {
		return nil
	}
	kind, _ := e.Args[0].(alarm.SensorKind)
	if kind == alarm.SensorMotion && alarm.State(e.Src) == alarm.StateArmedHome {
		e.Cancel()
	}
	return nil
}
