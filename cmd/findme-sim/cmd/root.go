package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/service/simulator"
	"github.com/oshokin/findme/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logPath is the file receiving log lines.
	logPath string
	// peers is the number of simulated remote tags.
	peers int
	// verbose writes debug lines to the log file.
	verbose bool

	// rootCmd represents the base command for the terminal simulator.
	rootCmd = &cobra.Command{
		Use:   "findme-sim",
		Short: "Simulate a find-me tag in the terminal.",
		Long: `Runs a find-me tag on virtual hardware next to a few simulated remote tags.

Keys:
  h, m     tap the high or mild button
  0, 1, 2  write alert level none, mild or high as a remote locator would
  c        connect or disconnect a simulated central
  r        move the simulated peers in or out of range
  q        quit

Log lines are written to a file instead of the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return simulator.Run(ctx, &simulator.Options{
				ConfigPath: configPath,
				LogPath:    logPath,
				Peers:      peers,
				Verbose:    verbose,
			})
		},
	}
)

// Execute runs the findme-sim CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&logPath, "log", "l", simulator.DefaultLogFilename, "path to log file")
	rootCmd.Flags().IntVarP(&peers, "peers", "p", simulator.DefaultPeers, "number of simulated remote tags")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "write debug lines to the log file")
}
