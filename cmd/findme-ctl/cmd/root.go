package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/service/client"
	"github.com/oshokin/findme/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// controlAddress overrides the control address from the configuration file.
	controlAddress string
	// asJSON prints the status as JSON.
	asJSON bool
	// wait retries an alert write until the device shows it.
	wait bool

	// rootCmd represents the base command for controlling a running tag.
	rootCmd = &cobra.Command{
		Use:   "findme-ctl",
		Short: "Control a running find-me tag.",
		Long: `Connects to the control plane of a running findme process.

Use the subcommands to read the status, press the virtual buttons or write
the alert level of the tag the way a peer would.`,
	}

	// statusCmd prints the status of the tag.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the tag status.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(client.ActionStatus, "")
		},
	}

	// pressCmd presses a button.
	pressCmd = &cobra.Command{
		Use:       "press {high|mild}",
		Short:     "Press and release a tag button.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"high", "mild"},
		RunE: func(_ *cobra.Command, args []string) error {
			return run(client.ActionPress, args[0])
		},
	}

	// alertCmd writes the alert level.
	alertCmd = &cobra.Command{
		Use:       "alert {none|mild|high}",
		Short:     "Write the tag alert level as a peer would.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"none", "mild", "high"},
		RunE: func(_ *cobra.Command, args []string) error {
			return run(client.ActionAlert, args[0])
		},
	}
)

// run performs action with the flags of the invocation.
func run(action client.Action, argument string) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return client.Run(ctx, &client.Options{
		ConfigPath:     configPath,
		ControlAddress: controlAddress,
		Action:         action,
		Argument:       argument,
		JSON:           asJSON,
		Wait:           wait,
	})
}

// Execute runs the findme-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&controlAddress, "address", "a", "", "control address, overrides config")

	statusCmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print status as JSON")
	alertCmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the tag shows the level")

	rootCmd.AddCommand(statusCmd, pressCmd, alertCmd)
}
