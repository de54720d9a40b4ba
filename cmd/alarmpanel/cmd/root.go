// Package cmd holds the alarmpanel cobra commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/config"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X github.com/nerrad567/gray-logic-alarm/cmd/alarmpanel/cmd.version=1.0.0"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	// defaultConfigPath is used when neither --config nor ALARMPANEL_CONFIG is set.
	defaultConfigPath = "configs/config.yaml"

	configEnv = "ALARMPANEL_CONFIG"
)

// newRootCmd builds the command tree. serve is the default action.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "alarmpanel",
		Short: "Route MQTT alarm panel commands, sensors and state.",
		Long: `alarmpanel connects to an MQTT broker, validates alarm commands from the
command topic, feeds sensor and config messages to the alarm core, and
publishes state changes and panel events.

Running without a subcommand is the same as "alarmpanel serve".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", getConfigPath(), "path to configuration file")

	root.AddCommand(
		newServeCmd(&configPath),
		newTopicsCmd(&configPath),
		newHashSecretCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits with non-zero status on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// getConfigPath returns ALARMPANEL_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv(configEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig loads path. When optional is true and the file does not exist,
// the built-in defaults are used instead.
func loadConfig(path string, optional bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if optional && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("loading config %s: %w", path, err)
}
