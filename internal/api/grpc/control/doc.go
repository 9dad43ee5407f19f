// Package control implements the gRPC control plane of a find-me device.
//
// The DeviceControl service is registered from a hand-written service
// descriptor over the protobuf well-known types, so no generated code is
// needed. Status is returned as a Struct; button and alert arguments are
// plain strings.
package control
