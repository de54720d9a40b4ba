// Package config handles loading and validating the alarm panel configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with ALARMPANEL_* environment variables
//   - Validation of required fields and the MQTT topic layout
//   - Default value handling
//
// Security Considerations:
//   - The alarm code and broker credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/alarmpanel.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Alarm.Topics.Command)
package config
