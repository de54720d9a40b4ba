// Package topics holds the alarm panel's MQTT topic taxonomy.
//
// A Registry is built once from configuration, validated, and then shared
// read-only by every component that needs a topic name. Resolve maps an
// inbound topic back to its family:
//
//	home/alarm/set            -> KindCommand
//	home/alarm                -> KindState
//	home/alarm/event          -> KindEvent
//	home/alarm/config         -> KindConfig
//	home/alarm/sensor/<kind>  -> KindSensor, SubKind "<kind>"
//	alarmpanel/sensor/<kind>  -> KindSensor, SubKind "<kind>"
//	alarmpanel/command        -> KindPanelCommand
//
// Sensor sub-kinds are passed through raw and need not be a known
// alarm.SensorKind.
package topics
