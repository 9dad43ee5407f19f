// Package ui maps the device state to LED patterns and a tone request.
//
// Reconcile is a pure function. Flashing is produced by a shared Marquee, a
// single bit rotating through a ten-bit window once per UI tick; an LED is lit
// whenever its pattern has that bit set.
package ui
