// Package influxdb provides optional InfluxDB telemetry for the alarm panel.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, health checks and helpers for the measurements the panel
// writes:
//
//   - alarm_state: one point per state transition, tagged with the new state
//   - alarm_event: one point per raised panel event
//   - sensor_reading: numeric sensor values, tagged with the sensor kind
//   - alarm_command: handled commands, tagged with command, result and source
//
// Every point also carries a site tag with the configured site ID.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteStateChange("disarmed", "arming")
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched according to batch_size and flush_interval; async write errors
// are delivered to the callback set with SetOnError.
package influxdb
