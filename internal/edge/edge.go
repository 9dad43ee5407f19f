// Package edge turns repeatedly sampled values into change events.
package edge

// Detector remembers the last observed value and reports changes.
type Detector[T comparable] struct {
	// last is the previously observed value.
	last T
}

// New returns a detector seeded with initial.
func New[T comparable](initial T) *Detector[T] {
	return &Detector[T]{last: initial}
}

// Changed records curr and returns it with true when it differs from the
// previous observation.
func (d *Detector[T]) Changed(curr T) (T, bool) {
	if curr == d.last {
		return curr, false
	}

	d.last = curr

	return curr, true
}
