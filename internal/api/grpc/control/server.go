package control

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/service/device"
)

// ErrUnsupported is returned by a Service for operations the device cannot perform.
var ErrUnsupported = errors.New("operation is not supported by this device")

// Service abstracts the device operations the transport layer depends on.
type Service interface {
	// Status returns the state published by the last scheduler pass.
	Status(ctx context.Context) device.Status
	// PressButton presses and releases the High or Mild button.
	PressButton(ctx context.Context, button alert.Severity) error
	// WriteAlert simulates a peer writing the local alert level.
	WriteAlert(ctx context.Context, level alert.Severity) error
}

// Server implements the DeviceControl gRPC API.
type Server struct {
	// service provides the device operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetStatus returns the device status.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := ToStruct(s.service.Status(ctx))
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return out, nil
}

// PressButton presses the "high" or "mild" button.
func (s *Server) PressButton(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "button is required")
	}

	button, err := alert.SeverityFromString(req.GetValue())
	if err != nil || !button.Active() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown button %q", req.GetValue())
	}

	if err = s.service.PressButton(ctx, button); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// WriteAlert sets the local alert level as a peer would.
func (s *Server) WriteAlert(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "level is required")
	}

	level, err := alert.SeverityFromString(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "unknown level %q", req.GetValue())
	}

	if err = s.service.WriteAlert(ctx, level); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// ToStruct converts a device status to its wire form.
func ToStruct(st device.Status) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"role":               st.State.Role.String(),
		"severity":           st.State.Severity.String(),
		"local_alert":        st.LocalAlert.String(),
		"connected":          st.Connected,
		"advertising":        st.Advertising,
		"led_a":              st.UI.LedA.String(),
		"led_b":              st.UI.LedB.String(),
		"lit_a":              st.LitA,
		"lit_b":              st.LitB,
		"tone":               st.UI.Tone.String(),
		"playing":            st.Playing,
		"ledger_size":        st.Peers,
		"cancel_passes_left": st.CancelPassesLeft,
	})
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrUnsupported):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
