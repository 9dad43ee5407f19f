package board

// InputPin reads a debounced digital level.
type InputPin interface {
	Get() bool
}

// OutputPin drives a digital level.
type OutputPin interface {
	Set(level bool)
}

// Piezo produces a square wave at hz; zero silences it.
type Piezo interface {
	Tone(hz uint32)
}

// Edge is the result of reading a button once.
type Edge uint8

const (
	// EdgeNone means the level did not change.
	EdgeNone Edge = iota
	// EdgePressed means the button went down.
	EdgePressed
	// EdgeReleased means the button went up.
	EdgeReleased
)

// String names the edge.
func (e Edge) String() string {
	switch e {
	case EdgePressed:
		return "pressed"
	case EdgeReleased:
		return "released"
	default:
		return "none"
	}
}

// Button turns a level into press and release edges.
type Button struct {
	// pin is the input the button is wired to.
	pin InputPin
	// invert is set for active-low wiring.
	invert bool
	// on is the last logical level.
	on bool
}

// NewButton returns a released button on pin.
func NewButton(pin InputPin, invert bool) *Button {
	return &Button{pin: pin, invert: invert}
}

// Read samples the pin and returns the edge since the previous call.
func (b *Button) Read() Edge {
	on := b.pin.Get() != b.invert
	if on == b.on {
		return EdgeNone
	}

	b.on = on
	if on {
		return EdgePressed
	}

	return EdgeReleased
}

// LED drives an indicator, applying inversion for active-low wiring.
type LED struct {
	// pin is the output the LED is wired to.
	pin OutputPin
	// invert is set for active-low wiring.
	invert bool
	// on is the last logical level written.
	on bool
}

// NewLED returns an LED that starts switched off.
func NewLED(pin OutputPin, invert bool) *LED {
	l := &LED{pin: pin, invert: invert}
	l.Write(false)

	return l
}

// Write switches the LED on or off.
func (l *LED) Write(on bool) {
	l.on = on
	l.pin.Set(on != l.invert)
}

// On reports the last logical level written.
func (l *LED) On() bool {
	return l.on
}

// Board bundles the device's inputs and outputs.
type Board struct {
	// High is the button selecting a high alert.
	High *Button
	// Mild is the button selecting a mild alert.
	Mild *Button
	// LedA is the radio indicator.
	LedA *LED
	// LedB is the alert indicator.
	LedB *LED
	// Piezo is the tone generator.
	Piezo Piezo
}
