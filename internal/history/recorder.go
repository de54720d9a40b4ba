package history

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
	"github.com/nerrad567/gray-logic-alarm/internal/codec"
	"github.com/nerrad567/gray-logic-alarm/internal/dispatch"
	"github.com/nerrad567/gray-logic-alarm/internal/router"
	"github.com/nerrad567/gray-logic-alarm/internal/topics"
)

const (
	defaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// Command outcomes stored in the "result" detail field.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultRefused  = "refused"
)

// PointWriter receives telemetry points. influxdb.Client satisfies it.
type PointWriter interface {
	WriteStateChange(from, to string)
	WriteAlarmEvent(event string)
	WriteSensorReading(kind string, value float64)
	WriteCommand(command, result, source string)
}

// Logger is the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Option configures a Recorder.
type Option func(*Recorder)

// WithPointWriter forwards telemetry to w.
func WithPointWriter(w PointWriter) Option {
	return func(r *Recorder) { r.points = w }
}

// WithLogger sets the Recorder's logger. A nil logger is ignored.
func WithLogger(l Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithQueueSize sets how many entries may wait for the database before new
// ones are dropped.
func WithQueueSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// Recorder turns alarm activity into history entries and telemetry points.
// It implements controller.Listener and router.Observer.
//
// Listener callbacks run on the caller's goroutine, so database writes are
// queued and performed by a background worker started with Start.
type Recorder struct {
	repo      Repository
	points    PointWriter
	logger    Logger
	queueSize int

	mu      sync.Mutex
	queue   chan Entry
	started bool
	closed  bool
	done    chan struct{}
	dropped int
}

// NewRecorder creates a Recorder. repo may be nil when the history database
// is disabled; entries are then only forwarded as points.
func NewRecorder(repo Repository, opts ...Option) *Recorder {
	r := &Recorder{
		repo:      repo,
		logger:    noopLogger{},
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.queue = make(chan Entry, r.queueSize)
	r.done = make(chan struct{})
	return r
}

// Start launches the database writer. Calls after the first are no-ops.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	go r.run()
}

// Close stops accepting entries and waits for queued ones to be written.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	started := r.started
	r.mu.Unlock()

	if started {
		<-r.done
	}
}

// Dropped reports how many entries were discarded because the queue was full.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.repo.Create(ctx, &e); err != nil {
			r.logger.Warn("failed to record alarm history", "kind", e.Kind, "name", e.Name, "error", err)
		}
		cancel()
	}
}

func (r *Recorder) enqueue(e Entry) {
	if r.repo == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- e:
	default:
		r.dropped++
		r.logger.Warn("alarm history queue full, entry dropped", "kind", e.Kind, "name", e.Name)
	}
}

// StateChanged implements controller.Listener.
func (r *Recorder) StateChanged(from, to alarm.State) {
	if from == to {
		// Re-announcement of the current state, nothing changed.
		return
	}
	r.enqueue(Entry{Kind: KindState, Name: string(to), Detail: map[string]any{"from": string(from)}})
	if r.points != nil {
		r.points.WriteStateChange(string(from), string(to))
	}
}

// EventRaised implements controller.Listener.
func (r *Recorder) EventRaised(e alarm.Event) {
	r.enqueue(Entry{Kind: KindEvent, Name: string(e)})
	if r.points != nil {
		r.points.WriteAlarmEvent(string(e))
	}
}

// MessageReceived implements router.Observer. Raw messages are not recorded.
func (r *Recorder) MessageReceived(router.InboundMessage, topics.Kind) {}

// CommandHandled implements router.Observer.
func (r *Recorder) CommandHandled(res router.CommandResult) {
	name := string(res.Command)
	if name == "" {
		name = "unknown"
	}

	result, reason := commandOutcome(res.Err)
	detail := map[string]any{"result": result}
	if reason != "" {
		detail["reason"] = reason
	}
	if res.Err != nil && result != ResultRejected {
		detail["error"] = res.Err.Error()
	}

	r.enqueue(Entry{Kind: KindCommand, Name: name, Detail: detail, Source: res.Source})
	if r.points != nil {
		r.points.WriteCommand(name, result, res.Source)
	}
}

// SensorReceived implements router.Observer.
func (r *Recorder) SensorReceived(reading codec.SensorReading) {
	r.enqueue(Entry{
		Kind:   KindSensor,
		Name:   reading.SubKind,
		Detail: map[string]any{"value": reading.Value, "active": reading.Active()},
		Source: router.SourceMQTT,
	})
	if r.points == nil {
		return
	}
	if v, ok := numeric(reading.Value); ok {
		r.points.WriteSensorReading(reading.SubKind, v)
	}
}

func commandOutcome(err error) (result, reason string) {
	if err == nil {
		return ResultAccepted, ""
	}
	var rej *dispatch.RejectedError
	switch {
	case errors.As(err, &rej):
		return ResultRejected, string(rej.Reason)
	case errors.Is(err, codec.ErrDecode):
		return ResultInvalid, ""
	default:
		return ResultRefused, ""
	}
}

// numeric converts numeric and boolean sensor values to a float.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
