package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/service/control"
)

// Action is the findme-ctl operation.
type Action uint8

const (
	// ActionStatus prints the device status.
	ActionStatus Action = iota
	// ActionPress presses a button.
	ActionPress
	// ActionAlert writes the device alert level.
	ActionAlert
)

// Options configures a findme-ctl invocation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ControlAddress overrides the control address from config when specified.
	ControlAddress string
	// Action is the operation to perform.
	Action Action
	// Argument is the button or level for ActionPress and ActionAlert.
	Argument string
	// JSON prints the status as protojson.
	JSON bool
	// Wait retries an alert write until the status reflects it.
	Wait bool
	// Out receives the printed status, stdout when nil.
	Out io.Writer
}

// defaultConfirmInterval defines retry delay when waiting for an alert to show up.
const defaultConfirmInterval = 200 * time.Millisecond

// errUnknownAction is returned for an Action outside the constants.
var errUnknownAction = errors.New("unknown action")

// Run connects to the device and performs the action.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "findme-ctl")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Use control address from options if provided, otherwise use config.
	address := cfg.ControlAddress
	if opts.ControlAddress != "" {
		address = opts.ControlAddress
	}

	client, err := control.Dial(ctx, address)
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	switch opts.Action {
	case ActionStatus:
		return printStatus(ctx, client, out, opts.JSON)
	case ActionPress:
		if err = client.PressButton(ctx, opts.Argument); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Button pressed", "button", opts.Argument, "control_address", address)

		return nil
	case ActionAlert:
		return writeAlert(ctx, client, opts)
	default:
		return fmt.Errorf("run action %d: %w", opts.Action, errUnknownAction)
	}
}

// writeAlert writes the level and, when asked, waits until the device shows it.
func writeAlert(ctx context.Context, client *control.Client, opts *Options) error {
	if err := client.WriteAlert(ctx, opts.Argument); err != nil {
		return err
	}

	if !opts.Wait {
		return nil
	}

	// confirmed reports whether the device published the written level.
	confirmed := func() bool {
		st, err := client.Status(ctx)
		if err != nil {
			logger.ErrorKV(ctx, "GetStatus failed", "error", err)
			return false
		}

		return st.GetFields()["local_alert"].GetStringValue() == opts.Argument
	}

	ticker := time.NewTicker(defaultConfirmInterval)
	defer ticker.Stop()

	for !confirmed() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	logger.InfoKV(ctx, "Alert level confirmed", "level", opts.Argument)

	return nil
}

// printStatus writes the status as sorted "key: value" lines or as JSON.
func printStatus(ctx context.Context, client *control.Client, out io.Writer, asJSON bool) error {
	st, err := client.Status(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}

		_, err = fmt.Fprintln(out, string(data))

		return err
	}

	for _, line := range formatStatus(st) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	return nil
}

// formatStatus renders one "key: value" line per field in key order.
func formatStatus(st *structpb.Struct) []string {
	fields := st.AsMap()

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", key, fields[key]))
	}

	return lines
}
