// Package server runs the findme daemon.
//
// Run loads the settings, opens the radio, builds the device on a virtual
// board and serves the gRPC control plane while looping the device scheduler.
package server
