package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/service/server"
	"github.com/oshokin/findme/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// radioName overrides the radio from the configuration file.
	radioName string

	// rootCmd represents the base command for running the find-me tag.
	rootCmd = &cobra.Command{
		Use:   "findme [control-address]",
		Short: "Run the find-me tag.",
		Long: `Runs the find-me tag on the host adapter or on the in-memory air radio.

The tag advertises the Immediate Alert service and plays a tune when a peer
writes an alert level. The high and mild buttons start locating peers whose
name contains the configured pattern; pressing any button again cancels.

The virtual buttons are pressed over the control plane (see findme-ctl).
Control address can be provided as argument to override config (e.g., 127.0.0.1:50151).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use control address argument if provided, otherwise rely on config.
			var controlAddress string
			if len(args) > 0 {
				controlAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:     configPath,
				ControlAddress: controlAddress,
				Radio:          radioName,
			})
		},
	}
)

// Execute runs the findme CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&radioName, "radio", "r", "", `radio to use, "ble" or "air"`)
}
