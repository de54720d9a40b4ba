// Command alarmpanel runs the MQTT alarm panel: it routes commands, sensor
// readings and config messages from the broker into the alarm core and
// publishes state and events back.
//
// For configuration, see configs/config.yaml.
package main

import "github.com/nerrad567/gray-logic-alarm/cmd/alarmpanel/cmd"

func main() {
	cmd.Execute()
}
