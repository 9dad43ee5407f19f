package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"

	api "github.com/oshokin/findme/internal/api/grpc/control"
	"github.com/oshokin/findme/internal/board/virtual"
	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/radio"
	"github.com/oshokin/findme/internal/radio/air"
	"github.com/oshokin/findme/internal/radio/ble"
	"github.com/oshokin/findme/internal/service/device"
	"github.com/oshokin/findme/internal/tick"
)

// Options controls the findme process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ControlAddress provides an optional listen address override for the control plane.
	ControlAddress string
	// Radio provides an optional radio override, "ble" or "air".
	Radio string
}

// Run starts the device and the control plane and blocks until the context
// is canceled or the control plane fails.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "findme")

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	transport, err := openRadio(ctx, settings)
	if err != nil {
		return fmt.Errorf("open radio: %w", err)
	}

	b := virtual.NewBoard()

	dev, err := device.New(ctx, device.Params{
		Board:    &b.Board,
		Radio:    transport,
		Clock:    tick.NewSystemClock(),
		Settings: settings,
	})
	if err != nil {
		return fmt.Errorf("initialise device: %w", err)
	}

	// Setup TCP listener for the control plane.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.ControlAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.ControlAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.Register(grpcServer, api.NewServer(newService(dev, b, transport)))

	logger.InfoKV(ctx, "Control plane listening",
		"control_address", lis.Addr().String(), "radio", settings.Radio, "name", settings.Name)

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- grpcServer.Serve(lis)
	}()

	err = loop(ctx, dev, settings.LoopInterval, serveErr)

	logger.Info(ctx, "Shutting down control plane")
	grpcServer.GracefulStop()
	logger.Info(ctx, "Device stopped")

	return err
}

// loadSettings reads the settings file and applies the command line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.ControlAddress != "" {
		settings.ControlAddress = opts.ControlAddress
	}

	if opts.Radio != "" {
		settings.Radio = opts.Radio
	}

	if err = config.Validate(settings); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return settings, nil
}

// openRadio returns the transport selected by the settings. The host adapter
// is claimed only when no other findme process runs.
//
//nolint:ireturn // The transport is chosen at runtime.
func openRadio(ctx context.Context, settings *config.Config) (radio.Transport, error) {
	if settings.Radio == config.RadioAir {
		return air.New(), nil
	}

	executable, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	if err = ensureSingleInstance(filepath.Base(executable)); err != nil {
		return nil, err
	}

	transport, err := ble.New(ctx, settings.Name)
	if err != nil {
		return nil, fmt.Errorf("open bluetooth adapter: %w", err)
	}

	return transport, nil
}

// loop ticks the device every interval until ctx is done or the control
// plane stops serving.
func loop(ctx context.Context, dev *device.Device, interval time.Duration, serveErr <-chan error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}

			return nil
		case <-ticker.C:
			dev.Tick(ctx)
		}
	}
}
