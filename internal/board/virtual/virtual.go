// Package virtual implements board pins and a piezo in memory.
//
// The pins are safe for concurrent use: the control plane and the simulator
// press buttons from their own goroutines while the device loop samples them.
package virtual

import (
	"sync"
)

// Pin is a virtual digital pin usable as input and output.
type Pin struct {
	// mu protects the fields below.
	mu sync.Mutex
	// level is the steady level.
	level bool
	// queue holds levels returned by the next Get calls before level.
	queue []bool
}

// NewPin returns a pin at level.
func NewPin(level bool) *Pin {
	return &Pin{level: level}
}

// Get returns the next queued level or the steady level.
func (p *Pin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return p.level
	}

	level := p.queue[0]
	p.queue = p.queue[1:]

	return level
}

// Set changes the steady level and drops queued levels.
func (p *Pin) Set(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = level
	p.queue = nil
}

// Level returns the steady level.
func (p *Pin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.level
}

// Tap queues a press followed by a release, each seen by one Get call.
// active is the level of a pressed button.
func (p *Pin) Tap(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue = append(p.queue, active, !active)
	p.level = !active
}

// Piezo records the frequency it was last asked to play.
type Piezo struct {
	// mu protects the fields below.
	mu sync.Mutex
	// hz is the current frequency, zero when silent.
	hz uint32
	// notes counts frequency changes.
	notes int
}

// Tone sets the current frequency.
func (p *Piezo) Tone(hz uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if hz != p.hz {
		p.notes++
	}

	p.hz = hz
}

// Frequency returns the current frequency.
func (p *Piezo) Frequency() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.hz
}

// Notes returns how many times the frequency changed.
func (p *Piezo) Notes() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.notes
}
