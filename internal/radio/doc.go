// Package radio describes the short-range radio the find-me core talks to.
//
// The core never touches framing or the attribute protocol: it advertises,
// scans, connects to one peer at a time, writes the peer's Alert Level and
// disconnects. Implementations live in sub-packages: ble drives a real
// adapter through tinygo.org/x/bluetooth and air simulates peers in memory.
package radio
