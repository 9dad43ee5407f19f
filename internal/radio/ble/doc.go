// Package ble implements radio.Transport on a host Bluetooth adapter with
// tinygo.org/x/bluetooth.
//
// The adapter registers the Immediate Alert service with a one byte Alert
// Level characteristic. Peer writes land in an atomic cell that the device
// loop reads with LocalAlert. Scans are bounded by stopping the adapter scan
// from a timer.
package ble
