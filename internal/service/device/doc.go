// Package device runs the find-me tag.
//
// A Device owns the role state machine, the target and locator coordinators,
// the tone player and the LED outputs. Tick performs one cooperative
// scheduler pass: button edges, role transition, role behaviour, tone
// sequencing and LED reconciliation, in that order. Run builds a device from
// the settings file and loops Tick until the context is cancelled, serving
// the gRPC control plane alongside.
package device
