// Package air is an in-memory radio.Transport.
//
// An Air holds the local device's advertising and connection state together
// with a set of virtual peers in range. Peers record every alert level
// written to them and can be scripted to fail connects, lookups or writes.
// The simulator, the daemon without a Bluetooth adapter and the device tests
// run on it.
package air
