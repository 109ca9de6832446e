package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hearyou/bracelet-bridge/internal/config"
	"github.com/hearyou/bracelet-bridge/internal/service/bridge"
	"github.com/hearyou/bracelet-bridge/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// serialPort overrides the configured serial device.
	serialPort string
	// serialBaud overrides the configured baud rate.
	serialBaud int
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command running the bracelet bridge.
	rootCmd = &cobra.Command{
		Use:   "bracelet-bridge",
		Short: "Bridge the event store to the wearable bracelet.",
		Long: `Runs the bridge between the event/settings store and the bracelet.

Watches the store for new events and settings changes, actuates the
bracelet's LED and vibration motor over the serial link, and ingests
physical button presses back into the store as events. Watchers use
store change streams when available and fall back to polling otherwise.

All settings have defaults suitable for development; a YAML file and
environment variables (BRACELET_COM, BRACELET_BAUD, MONGO_URI, ...)
tune a deployment, and flags override both.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &bridge.Options{
				ConfigPath: configPath,
				SerialPort: serialPort,
				SerialBaud: serialBaud,
				LogLevel:   logLevel,
			}

			return bridge.Run(ctx, options)
		},
	}
)

// Execute runs the bracelet-bridge CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&serialPort, "port", "p", "", "serial device of the bracelet")
	rootCmd.Flags().IntVarP(&serialBaud, "baud", "b", 0, "baud rate of the serial link")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "minimum log level (debug, info, warn, error)")
}
