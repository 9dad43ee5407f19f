package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "findme.v1.DeviceControl"

// Full method names of the DeviceControl service.
const (
	GetStatusMethod   = "/" + ServiceName + "/GetStatus"
	PressButtonMethod = "/" + ServiceName + "/PressButton"
	WriteAlertMethod  = "/" + ServiceName + "/WriteAlert"
)

// controlServer is the handler type checked by grpc.Server.RegisterService.
type controlServer interface {
	GetStatus(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	PressButton(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error)
	WriteAlert(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error)
}

//nolint:gochecknoglobals // Service descriptors are package level in generated code too.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*controlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler: unary(GetStatusMethod, func(s controlServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.GetStatus(ctx, in)
			}),
		},
		{
			MethodName: "PressButton",
			Handler: unary(PressButtonMethod, func(s controlServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return s.PressButton(ctx, in)
			}),
		},
		{
			MethodName: "WriteAlert",
			Handler: unary(WriteAlertMethod, func(s controlServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return s.WriteAlert(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/findme/v1/control.proto",
}

// Register adds the DeviceControl service to registrar.
func Register(registrar grpc.ServiceRegistrar, server *Server) {
	registrar.RegisterService(&serviceDesc, server)
}

// unary builds a method handler decoding a T request and calling call,
// through the interceptor when one is installed.
func unary[T any](
	method string,
	call func(s controlServer, ctx context.Context, in *T) (any, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(T)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(controlServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}

		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*T)

			return call(server, ctx, typed)
		})
	}
}
