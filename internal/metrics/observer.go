package metrics

import (
	"errors"
	"strconv"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
	"github.com/nerrad567/gray-logic-alarm/internal/codec"
	"github.com/nerrad567/gray-logic-alarm/internal/dispatch"
	"github.com/nerrad567/gray-logic-alarm/internal/router"
	"github.com/nerrad567/gray-logic-alarm/internal/topics"
)

// MessageReceived implements router.Observer.
func (m *Metrics) MessageReceived(_ router.InboundMessage, kind topics.Kind) {
	m.MessagesReceived.WithLabelValues(kind.String()).Inc()
}

// CommandHandled implements router.Observer.
func (m *Metrics) CommandHandled(res router.CommandResult) {
	result, reason := classify(res.Err)
	m.Commands.WithLabelValues(result, reason).Inc()
	m.CommandLatency.Observe(res.Elapsed.Seconds())
}

// SensorReceived implements router.Observer.
func (m *Metrics) SensorReceived(r codec.SensorReading) {
	m.SensorReadings.WithLabelValues(r.SubKind, strconv.FormatBool(r.Active())).Inc()
}

// StateChanged implements controller.Listener.
func (m *Metrics) StateChanged(_, to alarm.State) {
	m.SetState(to)
}

// EventRaised implements controller.Listener.
func (m *Metrics) EventRaised(e alarm.Event) {
	m.Events.WithLabelValues(string(e)).Inc()
}

// classify maps a command outcome to its result and reason labels.
func classify(err error) (result, reason string) {
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
