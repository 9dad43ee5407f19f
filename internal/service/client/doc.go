// Package client implements the findme-ctl commands.
//
// The commands connect to a running device over the control plane, print its
// status, press its buttons or write its alert level the way a peer would.
package client
