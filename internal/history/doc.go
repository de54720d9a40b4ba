// Package history keeps a queryable log of alarm activity.
//
// Every state transition, raised event, handled command and sensor reading
// is written to the alarm_events table by a Recorder, which also forwards
// telemetry points to InfluxDB when a PointWriter is configured. The
// Repository serves the log to the status API with filtering and paging.
//
// Recording is best effort: failures are logged and never reach the
// routing path.
package history
