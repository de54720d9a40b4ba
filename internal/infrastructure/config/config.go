package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockout policies accepted by alarm.lockout_policy.
const (
	LockoutArmOnly     = "arm_only"
	LockoutAllCommands = "all_commands"
)

// Config is the root configuration structure for the alarm panel service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Alarm     AlarmConfig     `yaml:"alarm"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig identifies the installation.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// AlarmConfig contains the panel behaviour and its MQTT topic layout.
type AlarmConfig struct {
	// Code is the optional arm/disarm code. Empty means no code is required.
	Code string `yaml:"code"`

	// LockoutPolicy decides which commands are refused while triggered or disabled.
	// "arm_only" (default) or "all_commands".
	LockoutPolicy string `yaml:"lockout_policy"`

	// ArmDelay is the default exit delay in seconds, used when a command carries no delay.
	ArmDelay int `yaml:"arm_delay"`

	// PendingTime is the entry delay in seconds between a sensor trip and the trigger.
	PendingTime int `yaml:"pending_time"`

	Topics TopicsConfig `yaml:"topics"`

	// Sensors lists the sensor sub-kinds to subscribe to under topics.sensor.
	Sensors []string `yaml:"sensors"`

	// PanelSensors lists the panel's own sensors to subscribe to under
	// <topics.panel>/sensor, e.g. face, qrcode, motion.
	PanelSensors []string `yaml:"panel_sensors"`

	// PanelCommands enables the <topics.panel>/command subscription.
	PanelCommands bool `yaml:"panel_commands"`
}

// TopicsConfig contains the MQTT topic names used by the panel.
type TopicsConfig struct {
	Command string `yaml:"command"`
	State   string `yaml:"state"`
	Event   string `yaml:"event"`
	Config  string `yaml:"config"`
	Sensor  string `yaml:"sensor"`
	Panel   string `yaml:"panel"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
	StatusTopic string              `yaml:"status_topic"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP status API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`

	// AllowedOrigins lists browser origins besides the API's own host that
	// may call the command, token and WebSocket endpoints.
	AllowedOrigins []string `yaml:"allowed_origins"`

	Auth APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig contains wall panel authentication settings.
//
// Without a JWT secret the command and WebSocket endpoints are disabled.
type APIAuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTL is the access token lifetime in minutes.
	TokenTTL int `yaml:"token_ttl"`

	// MaxFailures failed logins or code attempts within FailureWindow
	// seconds lock the caller out for Lockout seconds.
	MaxFailures   int `yaml:"max_failures"`
	FailureWindow int `yaml:"failure_window"`
	Lockout       int `yaml:"lockout"`

	Panels []PanelConfig `yaml:"panels"`
}

// PanelConfig registers one wall panel. SecretHash is an argon2id PHC string
// as printed by "alarmpanel hash-secret".
type PanelConfig struct {
	ID         string `yaml:"id"`
	SecretHash string `yaml:"secret_hash"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket push settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ALARMPANEL_SECTION_KEY
// For example: ALARMPANEL_MQTT_HOST, ALARMPANEL_ALARM_CODE
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration with environment overrides applied.
// Used by commands that can run without a config file.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "site-001",
			Name: "Alarm Panel",
		},
		Alarm: AlarmConfig{
			LockoutPolicy: LockoutArmOnly,
			ArmDelay:      0,
			PendingTime:   30,
			Topics: TopicsConfig{
				Command: "home/alarm/set",
				State:   "home/alarm",
				Event:   "home/alarm/event",
				Config:  "home/alarm/config",
				Sensor:  "home/alarm/sensor",
				Panel:   "alarmpanel",
			},
			Sensors:       []string{"door", "window", "motion", "sound", "camera", "generic"},
			PanelSensors:  []string{"face", "qrcode", "motion"},
			PanelCommands: true,
		},
		Database: DatabaseConfig{
			Enabled:     true,
			Path:        "./data/alarmpanel.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "alarmpanel",
			},
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			StatusTopic: "home/alarm/availability",
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			Auth: APIAuthConfig{
				TokenTTL:      15,
				MaxFailures:   5,
				FailureWindow: 300,
				Lockout:       300,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Alarm
	if v := os.Getenv("ALARMPANEL_ALARM_CODE"); v != "" {
		cfg.Alarm.Code = v
	}

	// Database
	if v := os.Getenv("ALARMPANEL_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("ALARMPANEL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ALARMPANEL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ALARMPANEL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("ALARMPANEL_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("ALARMPANEL_API_JWT_SECRET"); v != "" {
		cfg.API.Auth.JWTSecret = v
	}

	// InfluxDB
	if v := os.Getenv("ALARMPANEL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
// All problems are collected and reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	errs = append(errs, c.Alarm.validate()...)

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when database is enabled")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.StatusTopic != "" && strings.ContainsAny(c.MQTT.StatusTopic, "+#") {
		errs = append(errs, "mqtt.status_topic must not contain wildcards")
	}

	if c.API.Enabled {
		if c.API.Port < 1 || c.API.Port > 65535 {
			errs = append(errs, "api.port must be between 1 and 65535")
		}
		errs = append(errs, c.API.Auth.validate()...)
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validate checks the alarm section: topics must be present, literal and distinct.
func (a AlarmConfig) validate() []string {
	var errs []string

	switch a.LockoutPolicy {
	case LockoutArmOnly, LockoutAllCommands:
	default:
		errs = append(errs, fmt.Sprintf("alarm.lockout_policy must be %q or %q", LockoutArmOnly, LockoutAllCommands))
	}

	if a.ArmDelay < 0 {
		errs = append(errs, "alarm.arm_delay must not be negative")
	}
	if a.PendingTime < 0 {
		errs = append(errs, "alarm.pending_time must not be negative")
	}

	named := []struct {
		key, value string
	}{
		{"alarm.topics.command", a.Topics.Command},
		{"alarm.topics.state", a.Topics.State},
		{"alarm.topics.event", a.Topics.Event},
		{"alarm.topics.config", a.Topics.Config},
		{"alarm.topics.sensor", a.Topics.Sensor},
		{"alarm.topics.panel", a.Topics.Panel},
	}

	seen := make(map[string]string, len(named))
	for _, n := range named {
		switch {
		case n.value == "":
			errs = append(errs, n.key+" is required")
			continue
		case strings.ContainsAny(n.value, "+#"):
			errs = append(errs, n.key+" must not contain wildcards")
		}
		if prev, dup := seen[n.value]; dup {
			errs = append(errs, fmt.Sprintf("%s duplicates %s (%q)", n.key, prev, n.value))
			continue
		}
		seen[n.value] = n.key
	}

	for i, s := range a.Sensors {
		if s == "" || strings.ContainsAny(s, "+#/") {
			errs = append(errs, fmt.Sprintf("alarm.sensors[%d] must be a single non-empty topic level", i))
		}
	}
	for i, s := range a.PanelSensors {
		if s == "" || strings.ContainsAny(s, "+#/") {
			errs = append(errs, fmt.Sprintf("alarm.panel_sensors[%d] must be a single non-empty topic level", i))
		}
	}

	return errs
}

// MinJWTSecretLength is the shortest accepted api.auth.jwt_secret.
const MinJWTSecretLength = 32

func (a APIAuthConfig) validate() []string {
	var errs []string

	switch {
	case a.JWTSecret == "" && len(a.Panels) > 0:
		errs = append(errs, "api.auth.jwt_secret is required when panels are configured")
	case a.JWTSecret != "" && len(a.JWTSecret) < MinJWTSecretLength:
		errs = append(errs, fmt.Sprintf("api.auth.jwt_secret must be at least %d characters", MinJWTSecretLength))
	}

	if a.TokenTTL < 1 {
		errs = append(errs, "api.auth.token_ttl must be at least 1 minute")
	}
	if a.MaxFailures < 1 || a.FailureWindow < 1 || a.Lockout < 1 {
		errs = append(errs, "api.auth.max_failures, failure_window and lockout must be positive")
	}

	seen := make(map[string]struct{}, len(a.Panels))
	for i, p := range a.Panels {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("api.auth.panels[%d].id is required", i))
		} else if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Sprintf("api.auth.panels[%d].id %q is duplicated", i, p.ID))
		}
		seen[p.ID] = struct{}{}

		if !strings.HasPrefix(p.SecretHash, "$argon2id$") {
			errs = append(errs, fmt.Sprintf("api.auth.panels[%d].secret_hash must be an argon2id hash", i))
		}
	}

	return errs
}

// GetReadTimeout returns the API read timeout as a Duration.
func (a APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (a APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (a APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}

// GetTokenTTL returns the access token lifetime.
func (a APIAuthConfig) GetTokenTTL() time.Duration {
	return time.Duration(a.TokenTTL) * time.Minute
}

// GetFailureWindow returns the window failed attempts are counted in.
func (a APIAuthConfig) GetFailureWindow() time.Duration {
	return time.Duration(a.FailureWindow) * time.Second
}

// GetLockout returns how long a caller is refused after too many failures.
func (a APIAuthConfig) GetLockout() time.Duration {
	return time.Duration(a.Lockout) * time.Second
}
