// Package tone parses RTTTL ring tones and plays them on a piezo.
//
// The Player is cooperative: Tick must be called from the device loop and
// never blocks, a one-shot timer schedules the end of each note.
package tone
