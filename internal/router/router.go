package router

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
	"github.com/nerrad567/gray-logic-alarm/internal/codec"
	"github.com/nerrad567/gray-logic-alarm/internal/dispatch"
	"github.com/nerrad567/gray-logic-alarm/internal/topics"
)

// QoS is used for every subscription.
const QoS byte = 0

// Command sources.
const (
	SourceMQTT = "mqtt"
	SourceAPI  = "api"
)

// InboundMessage is one broker delivery.
type InboundMessage struct {
	Topic     string
	Payload   []byte
	MessageID string
}

// Subscription is a topic the router listens on.
type Subscription struct {
	Topic string `json:"topic"`
	QoS   byte   `json:"qos"`
}

// StateSource returns a snapshot of the current alarm state.
type StateSource interface {
	State() alarm.State
}

// ActionSink receives validated commands.
type ActionSink interface {
	Apply(action dispatch.Action) error
}

// EventSink receives events raised by rejected commands.
type EventSink interface {
	RaiseEvent(e alarm.Event)
}

// SensorSink receives decoded sensor readings.
type SensorSink interface {
	HandleSensor(r codec.SensorReading)
}

// ConfigHandler receives config topic payloads.
type ConfigHandler interface {
	HandleConfig(p codec.Payload) error
}

// PanelHandler receives panel command instructions.
type PanelHandler interface {
	HandlePanel(instructions []codec.PanelInstruction)
}

// Observer is notified of routing outcomes. Implementations must not block.
type Observer interface {
	MessageReceived(msg InboundMessage, kind topics.Kind)
	CommandHandled(res CommandResult)
	SensorReceived(r codec.SensorReading)
}

// CommandResult describes one handled command. Command is empty when the
// payload could not be decoded. Err is nil for applied commands.
type CommandResult struct {
	Source  string
	Command alarm.Command
	Elapsed time.Duration
	Err     error
}

// Subscriber is the subscribe half of the broker client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler func(InboundMessage)) error
	Unsubscribe(topic string) error
}

// Logger is the logging interface used by the router.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Deps holds the router's collaborators. Registry, Dispatcher, State,
// Actions and Events are required.
type Deps struct {
	Registry   *topics.Registry
	Dispatcher *dispatch.Dispatcher
	State      StateSource
	Actions    ActionSink
	Events     EventSink

	// Optional handlers; messages for a nil handler are dropped.
	Sensors SensorSink
	Config  ConfigHandler
	Panel   PanelHandler

	// Code is the configured alarm code. Empty means no code is required.
	Code string

	Observers []Observer
	Logger    Logger
}

// Router routes inbound messages. Route and Submit are safe for concurrent use.
type Router struct {
	deps   Deps
	code   *string
	logger Logger

	mu         sync.Mutex
	subscriber Subscriber
	active     []Subscription
}

// New creates a Router.
func New(deps Deps) (*Router, error) {
	var missing []string
	if deps.Registry == nil {
		missing = append(missing, "registry")
	}
	if deps.Dispatcher == nil {
		missing = append(missing, "dispatcher")
	}
	if deps.State == nil {
		missing = append(missing, "state source")
	}
	if deps.Actions == nil {
		missing = append(missing, "action sink")
	}
	if deps.Events == nil {
		missing = append(missing, "event sink")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, missing)
	}

	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Router{
		deps:   deps,
		code:   dispatch.Code(deps.Code),
		logger: logger,
	}, nil
}

// BuildSubscriptions returns the subscriptions in a fixed order: the command
// topic, each configured sensor topic sorted by sub-kind, each panel sensor
// topic sorted by sub-kind, the config topic, then the panel command topic
// when enabled.
func BuildSubscriptions(reg *topics.Registry) []Subscription {
	subs := []Subscription{{Topic: reg.Command(), QoS: QoS}}

	sensors := reg.Sensors()
	sort.Strings(sensors)
	for _, s := range sensors {
		subs = append(subs, Subscription{Topic: reg.SensorTopic(s), QoS: QoS})
	}

	for _, s := range reg.PanelSensors() {
		subs = append(subs, Subscription{Topic: reg.PanelSensorTopic(s), QoS: QoS})
	}

	subs = append(subs, Subscription{Topic: reg.Config(), QoS: QoS})

	if reg.PanelCommandsEnabled() {
		subs = append(subs, Subscription{Topic: reg.PanelCommandTopic(), QoS: QoS})
	}
	return subs
}

// Subscriptions returns the router's subscription list.
func (r *Router) Subscriptions() []Subscription {
	return BuildSubscriptions(r.deps.Registry)
}

// Start subscribes to every topic in Subscriptions. On failure the topics
// already subscribed are released.
func (r *Router) Start(sub Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subscriber != nil {
		return ErrAlreadyStarted
	}

	var done []Subscription
	for _, s := range r.Subscriptions() {
		if err := sub.Subscribe(s.Topic, s.QoS, r.Route); err != nil {
			for _, d := range done {
				_ = sub.Unsubscribe(d.Topic)
			}
			return fmt.Errorf("%w: %s: %w", ErrSubscribe, s.Topic, err)
		}
		done = append(done, s)
	}

	r.subscriber = sub
	r.active = done
	r.logger.Info("router subscribed", "topics", len(done))
	return nil
}

// Stop releases all subscriptions. It is safe to call when not started.
func (r *Router) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subscriber == nil {
		return nil
	}

	var errs []error
	for _, s := range r.active {
		if err := r.subscriber.Unsubscribe(s.Topic); err != nil {
			errs = append(errs, fmt.Errorf("unsubscribe %s: %w", s.Topic, err))
		}
	}
	r.subscriber = nil
	r.active = nil
	return errors.Join(errs...)
}

// Route resolves msg and hands it to the matching handler.
func (r *Router) Route(msg InboundMessage) {
	res, err := r.deps.Registry.Resolve(msg.Topic)
	r.observeMessage(msg, res.Kind)
	if err != nil {
		r.logger.Debug("dropping message on unrecognized topic", "topic", msg.Topic, "message_id", msg.MessageID)
		return
	}

	switch res.Kind {
	case topics.KindCommand:
		_, _ = r.handleCommand(SourceMQTT, msg.Topic, msg.Payload, msg.MessageID)

	case topics.KindSensor:
		reading := codec.DecodeSensor(res.SubKind, msg.Payload)
		for _, o := range r.deps.Observers {
			o.SensorReceived(reading)
		}
		if r.deps.Sensors != nil {
			r.deps.Sensors.HandleSensor(reading)
		}

	case topics.KindConfig:
		if r.deps.Config == nil {
			return
		}
		if err := r.deps.Config.HandleConfig(codec.Decode(msg.Payload)); err != nil {
			r.logger.Warn("config message not applied", "topic", msg.Topic, "message_id", msg.MessageID, "error", err)
		}

	case topics.KindPanelCommand:
		instructions := codec.DecodePanelInstructions(msg.Payload)
		if len(instructions) == 0 {
			r.logger.Debug("panel command without known actions", "payload", string(msg.Payload))
			return
		}
		if r.deps.Panel != nil {
			r.deps.Panel.HandlePanel(instructions)
		}

	default:
		r.logger.Debug("ignoring message on outbound topic", "topic", msg.Topic, "kind", res.Kind)
	}
}

// Submit runs payload through the same decode and dispatch path as a
// message on the command topic. It returns the applied action, a
// codec.DecodeError, a *dispatch.RejectedError, or the alarm core's error.
func (r *Router) Submit(payload []byte) (dispatch.Action, error) {
	return r.handleCommand(SourceAPI, r.deps.Registry.Command(), payload, "")
}

func (r *Router) handleCommand(source, topic string, payload []byte, id string) (action dispatch.Action, err error) {
	var cmd alarm.Command
	start := time.Now()
	defer func() {
		res := CommandResult{Source: source, Command: cmd, Elapsed: time.Since(start), Err: err}
		for _, o := range r.deps.Observers {
			o.CommandHandled(res)
		}
	}()

	decoded, err := codec.DecodeCommand(payload)
	if err != nil {
		r.logger.Info("command dropped", "source", source, "message_id", id, "error", err)
		return dispatch.Action{}, err
	}
	cmd = decoded.Command

	action, err = r.deps.Dispatcher.Dispatch(dispatch.Request{
		Topic:          topic,
		Command:        decoded.Command,
		Delay:          decoded.Delay,
		CurrentState:   r.deps.State.State(),
		ProvidedCode:   decoded.Code,
		ConfiguredCode: r.code,
	})
	if err != nil {
		var rej *dispatch.RejectedError
		if errors.As(err, &rej) {
			r.logger.Info("command rejected", "source", source, "command", cmd, "reason", rej.Reason, "message_id", id)
			if e, ok := rej.Reason.Event(); ok {
				r.deps.Events.RaiseEvent(e)
			}
		}
		return dispatch.Action{}, err
	}

	if err = r.deps.Actions.Apply(action); err != nil {
		r.logger.Info("command not applied", "source", source, "command", cmd, "message_id", id, "error", err)
		return action, err
	}

	r.logger.Info("command applied", "source", source, "command", cmd, "delay", action.Delay, "message_id", id)
	return action, nil
}

func (r *Router) observeMessage(msg InboundMessage, kind topics.Kind) {
	for _, o := range r.deps.Observers {
		o.MessageReceived(msg, kind)
	}
}
