// Package board holds the device's physical inputs and outputs: two buttons,
// two LEDs and a piezo. Pins are abstract so the same code drives real GPIO,
// the virtual board of the host daemon and the simulator.
package board
