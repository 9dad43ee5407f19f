package ui

// window limits the marquee to ten steps.
const window Pattern = 0b1111111111

// seed is the marquee start bit.
const seed Pattern = 0b1

// Marquee is the rotating single bit shared by every LED.
type Marquee struct {
	// bit is the current phase.
	bit Pattern
}

// NewMarquee returns a marquee at its seed bit.
func NewMarquee() *Marquee {
	return &Marquee{bit: seed}
}

// Bit returns the current phase, restoring the seed if it left the window.
func (m *Marquee) Bit() Pattern {
	if m.bit&window == 0 {
		m.bit = seed
	}

	return m.bit
}

// Advance moves to the next phase.
func (m *Marquee) Advance() {
	m.bit = m.Bit() << 1
}
