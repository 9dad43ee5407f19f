// Package simulator runs a find-me tag on virtual hardware inside a terminal UI.
//
// The tag is wired to a virtual board and the in-memory air transport together
// with a few simulated remote tags. Keys press the buttons, write the local
// alert level the way a remote locator would and toggle the simulated radio
// conditions. Log lines go to a file so they do not garble the screen.
package simulator
