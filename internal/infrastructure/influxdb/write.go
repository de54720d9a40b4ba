package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the alarm panel.
const (
	MeasurementState   = "alarm_state"
	MeasurementEvent   = "alarm_event"
	MeasurementSensor  = "sensor_reading"
	MeasurementCommand = "alarm_command"
)

// WriteStateChange records a panel state transition.
//
// The new state is a tag so dashboards can group by it; the previous state
// is stored as a field.
//
// Example:
//
//	client.WriteStateChange("arming", "armed_away")
func (c *Client) WriteStateChange(from, to string) {
	c.writePoint(statePoint(from, to, time.Now()))
}

// WriteAlarmEvent records a raised panel event such as "trigger".
func (c *Client) WriteAlarmEvent(event string) {
	c.writePoint(eventPoint(event, time.Now()))
}

// WriteSensorReading records a numeric sensor value under its kind tag.
//
// Example:
//
//	client.WriteSensorReading("door", 1)
func (c *Client) WriteSensorReading(kind string, value float64) {
	c.writePoint(sensorPoint(kind, value, time.Now()))
}

// WriteCommand records a handled command and its outcome
// ("accepted", "rejected" or "invalid").
func (c *Client) WriteCommand(command, result, source string) {
	c.writePoint(commandPoint(command, result, source, time.Now()))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func statePoint(from, to string, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementState,
		map[string]string{"state": to},
		map[string]interface{}{"previous": from, "value": 1},
		ts,
	)
}

func eventPoint(event string, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementEvent,
		map[string]string{"event": event},
		map[string]interface{}{"value": 1},
		ts,
	)
}

func sensorPoint(kind string, value float64, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementSensor,
		map[string]string{"kind": kind},
		map[string]interface{}{"value": value},
		ts,
	)
}

func commandPoint(command, result, source string, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementCommand,
		map[string]string{"command": command, "result": result, "source": source},
		map[string]interface{}{"value": 1},
		ts,
	)
}
