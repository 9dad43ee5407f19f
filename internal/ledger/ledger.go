// Package ledger tracks per-peer write attempts while locating or cancelling.
package ledger

import (
	"errors"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/radio"
)

const (
	// DefaultCapacity is the number of peers handled per locate cycle.
	DefaultCapacity = 8
	// DefaultMaxAttempts is the number of successful writes pushed to each peer.
	DefaultMaxAttempts = 3
)

// ErrFull is returned by Observe when every slot is taken.
var ErrFull = errors.New("peer ledger is full")

// entry is one (address, counter) slot.
type entry struct {
	// addr identifies the peer.
	addr radio.Address
	// count is the number of successful alert writes not yet cancelled.
	count uint8
}

// Ledger is a fixed-capacity address to counter table with linear lookup.
// The zero value is unusable; create one with New.
type Ledger struct {
	// entries holds the occupied slots; its capacity never changes.
	entries []entry
	// max bounds the counter while locating.
	max uint8
}

// New returns an empty ledger with room for capacity peers.
func New(capacity int, maxAttempts uint8) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Ledger{
		entries: make([]entry, 0, capacity),
		max:     maxAttempts,
	}
}

// Observe records addr with a zero counter if it is not present yet.
// It reports whether the address was added.
func (l *Ledger) Observe(addr radio.Address) (bool, error) {
	if l.index(addr) >= 0 {
		return false, nil
	}

	if len(l.entries) == cap(l.entries) {
		return false, ErrFull
	}

	l.entries = append(l.entries, entry{addr: addr})

	return true, nil
}

// Pending returns the addresses that still need a write in the given role:
// counters below the maximum while locating, above zero while cancelling.
func (l *Ledger) Pending(role alert.Role) []radio.Address {
	out := make([]radio.Address, 0, len(l.entries))

	for _, e := range l.entries {
		switch role {
		case alert.Locating:
			if e.count < l.max {
				out = append(out, e.addr)
			}
		case alert.Cancelling:
			if e.count > 0 {
				out = append(out, e.addr)
			}
		case alert.Target:
		}
	}

	return out
}

// Succeeded records a successful write to addr. While locating the counter
// is incremented and frozen at the maximum; while cancelling it is
// decremented and the entry is removed once it reaches zero.
func (l *Ledger) Succeeded(addr radio.Address, role alert.Role) {
	i := l.index(addr)
	if i < 0 {
		return
	}

	switch role {
	case alert.Locating:
		if l.entries[i].count < l.max {
			l.entries[i].count++
		}
	case alert.Cancelling:
		if l.entries[i].count > 0 {
			l.entries[i].count--
		}

		if l.entries[i].count == 0 {
			l.remove(i)
		}
	case alert.Target:
	}
}

// Prune drops peers that were never written, so cancelling only visits
// peers that may be sounding.
func (l *Ledger) Prune() {
	kept := l.entries[:0]

	for _, e := range l.entries {
		if e.count > 0 {
			kept = append(kept, e)
		}
	}

	l.entries = kept
}

// Counter returns the counter for addr.
func (l *Ledger) Counter(addr radio.Address) (uint8, bool) {
	i := l.index(addr)
	if i < 0 {
		return 0, false
	}

	return l.entries[i].count, true
}

// Len returns the number of tracked peers.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Cap returns the fixed capacity.
func (l *Ledger) Cap() int {
	return cap(l.entries)
}

// Max returns the counter bound.
func (l *Ledger) Max() uint8 {
	return l.max
}

// Clear forgets every peer without releasing the backing array.
func (l *Ledger) Clear() {
	l.entries = l.entries[:0]
}

func (l *Ledger) index(addr radio.Address) int {
	for i := range l.entries {
		if l.entries[i].addr == addr {
			return i
		}
	}

	return -1
}

// remove deletes slot i keeping the order of the remaining slots.
func (l *Ledger) remove(i int) {
	copy(l.entries[i:], l.entries[i+1:])
	l.entries = l.entries[:len(l.entries)-1]
}
