package alert

import (
	"fmt"
	"strings"
)

// Severity is the alert intensity carried by the Alert Level characteristic.
type Severity uint8

const (
	// None means no alert.
	None Severity = iota
	// Mild is the lower alert level.
	Mild
	// High is the highest alert level.
	High
)

// ParseSeverity converts a received Alert Level byte into a Severity.
// Values above High are treated as High.
func ParseSeverity(b byte) Severity {
	if b > byte(High) {
		return High
	}

	return Severity(b)
}

// SeverityFromString parses "none", "mild" or "high" (case-insensitive).
func SeverityFromString(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return None, nil
	case "mild":
		return Mild, nil
	case "high":
		return High, nil
	default:
		return None, fmt.Errorf("unknown severity %q: %w", s, ErrUnknownSeverity)
	}
}

// Byte returns the wire representation of the severity.
func (s Severity) Byte() byte {
	return byte(s)
}

// Active reports whether the severity is an actual alert.
func (s Severity) Active() bool {
	return s != None
}

// String returns a lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case None:
		return "none"
	case Mild:
		return "mild"
	case High:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}
