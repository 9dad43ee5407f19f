package server

import (
	"context"
	"fmt"

	api "github.com/oshokin/findme/internal/api/grpc/control"
	"github.com/oshokin/findme/internal/board/virtual"
	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/radio"
	"github.com/oshokin/findme/internal/service/device"
)

// service exposes a device to the control plane.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// device publishes its status after every pass.
	device *device.Device
	// board receives button taps.
	board *virtual.Board
	// injector writes the local alert level; nil when the radio cannot.
	injector radio.AlertInjector
}

// newService creates a service for dev. Alert writes are supported when the
// transport implements radio.AlertInjector.
func newService(dev *device.Device, b *virtual.Board, transport radio.Transport) *service {
	s := &service{
		device: dev,
		board:  b,
	}

	if injector, ok := transport.(radio.AlertInjector); ok {
		s.injector = injector
	}

	return s
}

// Status returns the state published by the last pass.
func (s *service) Status(context.Context) device.Status {
	return s.device.Status()
}

// PressButton taps a board button. The device sees the press and the
// release on its next two passes.
func (s *service) PressButton(ctx context.Context, button alert.Severity) error {
	switch button {
	case alert.High:
		s.board.TapHigh()
	case alert.Mild:
		s.board.TapMild()
	case alert.None:
		return fmt.Errorf("press %s: %w", button, alert.ErrUnknownSeverity)
	}

	logger.InfoKV(ctx, "Button pressed remotely", "button", button.String())

	return nil
}

// WriteAlert writes the local alert level as a peer would.
func (s *service) WriteAlert(ctx context.Context, level alert.Severity) error {
	if s.injector == nil {
		return fmt.Errorf("write alert: %w", api.ErrUnsupported)
	}

	s.injector.WriteLocalAlert(level)
	logger.InfoKV(ctx, "Alert written remotely", "level", level.String())

	return nil
}

var _ api.Service = (*service)(nil)
