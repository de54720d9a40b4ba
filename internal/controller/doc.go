// Package controller is the reference alarm core: the single owner of the
// panel state.
//
// State transitions run through a looplab/fsm machine. Validated commands
// arrive through Apply, sensor readings through HandleSensor and panel
// configuration through HandleConfig. Arming and entry delays are timers;
// a generation counter discards timers that fired after being superseded.
//
// Every committed transition and raised event is delivered to registered
// Listeners, in order, while the controller lock is held. Listeners must not
// call Apply, HandleSensor, HandleConfig or RaiseEvent; State is safe to call.
package controller
