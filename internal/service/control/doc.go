// Package control is the client side of the device control plane.
//
// Client wraps a gRPC connection with a default call timeout and exposes the
// DeviceControl methods with plain Go arguments.
package control
