package ui

import (
	"github.com/oshokin/findme/internal/domain/alert"
)

// Pattern is a ten-bit flash mask matched against the marquee bit.
type Pattern uint16

const (
	// Off never lights.
	Off Pattern = 0b0
	// SingleFlash lights once per marquee cycle.
	SingleFlash Pattern = 0b1
	// DoubleFlash lights twice per cycle with a gap.
	DoubleFlash Pattern = 0b101
	// InvertedFlash is lit except for one step per cycle.
	InvertedFlash Pattern = 0b1111111110
	// InvertedDoubleFlash is lit except for two separated steps per cycle.
	InvertedDoubleFlash Pattern = 0b1111111010
	// Steady is always lit.
	Steady Pattern = 0b1111111111
)

// String names the pattern.
func (p Pattern) String() string {
	switch p {
	case Off:
		return "off"
	case SingleFlash:
		return "single-flash"
	case DoubleFlash:
		return "double-flash"
	case InvertedFlash:
		return "inverted-flash"
	case InvertedDoubleFlash:
		return "inverted-double-flash"
	case Steady:
		return "steady"
	default:
		return "custom"
	}
}

// Lit reports whether an LED with this pattern is on at marquee phase bit.
func (p Pattern) Lit(bit Pattern) bool {
	return p&bit != 0
}

// ToneRequest is the tone the device should be producing.
type ToneRequest uint8

const (
	// ToneStop means silence.
	ToneStop ToneRequest = iota
	// TonePlayMild plays the mild alert tune.
	TonePlayMild
	// TonePlayHigh plays the high alert tune.
	TonePlayHigh
)

// String names the request.
func (t ToneRequest) String() string {
	switch t {
	case TonePlayMild:
		return "mild"
	case TonePlayHigh:
		return "high"
	default:
		return "stop"
	}
}

// Inputs is everything the reconciliation depends on.
type Inputs struct {
	// State is the current role and severity.
	State alert.RoleState
	// Connected reports whether a central is connected to this device.
	Connected bool
	// Advertising reports whether the device is advertising.
	Advertising bool
	// LocalAlert is the device's own alert level.
	LocalAlert alert.Severity
	// Busy is true while the locator scans or dispatches.
	Busy bool
}

// Snapshot is the derived UI output.
type Snapshot struct {
	// LedA is the radio indicator.
	LedA Pattern
	// LedB is the alert indicator.
	LedB Pattern
	// Tone is the requested tone.
	Tone ToneRequest
}

// Reconcile computes the UI output for the inputs.
func Reconcile(in Inputs) Snapshot {
	switch in.State.Role {
	case alert.Target:
		return Snapshot{
			LedA: radioPattern(in.Connected, in.Advertising),
			LedB: severityPattern(in.LocalAlert),
			Tone: toneFor(in.LocalAlert),
		}
	case alert.Locating, alert.Cancelling:
		if in.Busy {
			return Snapshot{LedA: Off, LedB: Off, Tone: ToneStop}
		}

		out := Snapshot{LedA: InvertedFlash, LedB: Steady, Tone: ToneStop}
		if in.State.Role == alert.Locating {
			out.LedB = InvertedFlash
			if in.State.Severity == alert.High {
				out.LedB = InvertedDoubleFlash
			}
		}

		return out
	default:
		return Snapshot{}
	}
}

func radioPattern(connected, advertising bool) Pattern {
	switch {
	case connected:
		return DoubleFlash
	case advertising:
		return SingleFlash
	default:
		return Off
	}
}

func severityPattern(level alert.Severity) Pattern {
	switch level {
	case alert.High:
		return DoubleFlash
	case alert.Mild:
		return SingleFlash
	default:
		return Off
	}
}

func toneFor(level alert.Severity) ToneRequest {
	switch level {
	case alert.High:
		return TonePlayHigh
	case alert.Mild:
		return TonePlayMild
	default:
		return ToneStop
	}
}
