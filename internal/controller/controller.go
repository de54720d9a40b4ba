package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/looplab/fsm"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
	"github.com/nerrad567/gray-logic-alarm/internal/codec"
	"github.com/nerrad567/gray-logic-alarm/internal/dispatch"
)

// Listener receives committed transitions and raised events.
type Listener interface {
	StateChanged(from, to alarm.State)
	EventRaised(e alarm.Event)
}

// Logger is the logging interface used by the controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Config holds the controller timing settings.
type Config struct {
	// ArmDelay is the default exit delay in seconds, used when a command
	// carries no delay.
	ArmDelay int

	// PendingTime is the entry delay in seconds between a sensor trip and
	// the alarm triggering. Zero triggers immediately.
	PendingTime int

	// DelayUnit scales ArmDelay, PendingTime and command delays.
	// Defaults to time.Second.
	DelayUnit time.Duration

	// Initial is the starting state. Defaults to disarmed.
	Initial alarm.State
}

// Controller owns the alarm state. All methods are safe for concurrent use.
type Controller struct {
	mu          sync.Mutex
	machine     *fsm.FSM
	transitions []transition
	listeners   []Listener
	logger      Logger

	armDelay    int
	pendingTime int
	unit        time.Duration

	timer      *time.Timer
	generation uint64

	// current mirrors machine.Current() for lock-free reads.
	current atomic.Value
}

// New creates a Controller.
func New(cfg Config) *Controller {
	initial := cfg.Initial
	if initial == "" {
		initial = alarm.StateDisarmed
	}
	unit := cfg.DelayUnit
	if unit <= 0 {
		unit = time.Second
	}

	c := &Controller{
		logger:      noopLogger{},
		armDelay:    cfg.ArmDelay,
		pendingTime: cfg.PendingTime,
		unit:        unit,
	}
	c.machine = newMachine(initial, &c.transitions)
	c.current.Store(initial)
	return c
}

// SetLogger sets the logger. Nil restores the no-op logger.
func (c *Controller) SetLogger(l Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l == nil {
		l = noopLogger{}
	}
	c.logger = l
}

// AddListener registers l for transitions and events.
func (c *Controller) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// State returns the current state.
func (c *Controller) State() alarm.State {
	return c.current.Load().(alarm.State)
}

// ArmDelay returns the default exit delay in seconds.
func (c *Controller) ArmDelay() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armDelay
}

// Close stops any running timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimer()
}

// Apply executes a validated command.
func (c *Controller) Apply(action dispatch.Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.State()
	if current == alarm.StateDisabled {
		c.raise(alarm.EventSystemDisabled)
		return fmt.Errorf("%w: %s", ErrDisabled, action.Command)
	}

	switch {
	case action.Command == alarm.CommandPanic:
		c.cancelTimer()
		if err := c.fire(alarm.StateTriggered, EventTrigger); err != nil {
			return err
		}
		c.raise(alarm.EventTrigger)
		return nil

	case action.Command == alarm.CommandDisarm:
		c.cancelTimer()
		return c.fire(current, EventDisarm)

	case action.Command.IsArm():
		return c.arm(current, action)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, action.Command)
	}
}

func (c *Controller) arm(current alarm.State, action dispatch.Action) error {
	target, _ := action.Command.ArmedState()
	event := armEvents[target]

	if !c.machine.Can(event) {
		c.raise(alarm.EventFailedToArm)
		return fmt.Errorf("%w: %s from %s", ErrNotAllowed, action.Command, current)
	}

	delay := action.Delay
	if delay < 0 {
		delay = c.armDelay
	}

	c.cancelTimer()
	if delay == 0 || current == target {
		return c.fire(current, event)
	}

	if err := c.fire(current, EventBeginArming); err != nil {
		return err
	}
	gen := c.generation
	c.timer = time.AfterFunc(time.Duration(delay)*c.unit, func() {
		c.timerFired(gen, event)
	})
	c.logger.Info("arming", "target", target, "delay", delay)
	return nil
}

// HandleSensor processes a sensor reading. Only truthy intrusion readings
// while armed have an effect.
func (c *Controller) HandleSensor(r codec.SensorReading) {
	if !r.Kind.Intrusion() || !r.Active() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.State()
	if !current.IsArmed() {
		return
	}

	err := c.machine.Event(context.Background(), EventTrip, r.Kind)
	var canceled fsm.CanceledError
	if errors.As(err, &canceled) {
		c.logger.Debug("sensor ignored in current mode", "kind", r.Kind, "state", current)
		return
	}
	if err != nil {
		c.logger.Warn("sensor trip failed", "kind", r.Kind, "error", err)
		return
	}
	c.flush()

	c.logger.Info("sensor tripped", "kind", r.Kind, "sub_kind", r.SubKind, "pending_time", c.pendingTime)

	c.cancelTimer()
	if c.pendingTime <= 0 {
		c.triggerLocked()
		return
	}
	gen := c.generation
	c.timer = time.AfterFunc(time.Duration(c.pendingTime)*c.unit, func() {
		c.timerFired(gen, EventTrigger)
	})
}

// HandleConfig applies a config topic payload: {"state":"disabled"} or
// {"state":"disarmed"} toggles the panel, {"delay":N} sets the default arm
// delay. Both may appear together.
func (c *Controller) HandleConfig(p codec.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if d := p.Delay(); d != codec.NoDelay {
		c.armDelay = d
		c.logger.Info("arm delay updated", "delay", d)
	}

	if f := p.Lookup(codec.KeyState); f.Present {
		st, err := alarm.ParseState(f.Value)
		switch {
		case err != nil:
			errs = append(errs, err)
		case st == alarm.StateDisabled && c.State() == alarm.StateDisabled:
			c.logger.Debug("panel already disabled")
		case st == alarm.StateDisabled:
			c.cancelTimer()
			if err := c.fire(c.State(), EventDisable); err != nil {
				errs = append(errs, err)
			}
		case st == alarm.StateDisarmed:
			if c.State() == alarm.StateDisabled {
				if err := c.fire(alarm.StateDisabled, EventEnable); err != nil {
					errs = append(errs, err)
				}
			}
		default:
			errs = append(errs, fmt.Errorf("%w: config state %q", ErrNotAllowed, st))
		}
	}

	return errors.Join(errs...)
}

// RaiseEvent publishes e to listeners without changing state.
func (c *Controller) RaiseEvent(e alarm.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raise(e)
}

// Announce re-delivers the current state to listeners as a transition onto
// itself. Used after a broker reconnect.
func (c *Controller) Announce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.State()
	for _, l := range c.listeners {
		l.StateChanged(s, s)
	}
}

func (c *Controller) timerFired(gen uint64, event string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	c.timer = nil

	if event == EventTrigger {
		c.triggerLocked()
		return
	}
	if err := c.fire(c.State(), event); err != nil {
		c.logger.Warn("delayed transition failed", "event", event, "error", err)
	}
}

func (c *Controller) triggerLocked() {
	if err := c.fire(c.State(), EventTrigger); err != nil {
		c.logger.Warn("trigger failed", "error", err)
		return
	}
	c.raise(alarm.EventTrigger)
}

// fire runs event on the machine. A transition onto the current state is
// treated as success.
func (c *Controller) fire(current alarm.State, event string) error {
	err := c.machine.Event(context.Background(), event)

	var noop fsm.NoTransitionError
	if errors.As(err, &noop) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s from %s: %w", ErrNotAllowed, event, current, err)
	}
	c.flush()
	return nil
}

// flush delivers transitions recorded by the machine callbacks.
func (c *Controller) flush() {
	pending := c.transitions
	c.transitions = c.transitions[:0]

	for _, t := range pending {
		c.current.Store(t.to)
		c.logger.Info("alarm state changed", "from", t.from, "to", t.to)
		for _, l := range c.listeners {
			l.StateChanged(t.from, t.to)
		}
	}
}

func (c *Controller) raise(e alarm.Event) {
	c.logger.Info("alarm event", "event", e)
	for _, l := range c.listeners {
		l.EventRaised(e)
	}
}

// cancelTimer stops the running timer and invalidates any callback already
// in flight.
func (c *Controller) cancelTimer() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
