package radio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/findme/internal/domain/alert"
)

// UUID16 is a 16-bit Bluetooth SIG assigned number.
type UUID16 uint16

const (
	// ImmediateAlertService is the assigned number of the Immediate Alert service.
	ImmediateAlertService UUID16 = 0x1802
	// AlertLevelCharacteristic is the assigned number of the Alert Level characteristic.
	AlertLevelCharacteristic UUID16 = 0x2A06
)

var (
	// ErrServiceNotFound is returned when a peer does not expose the Immediate Alert service.
	ErrServiceNotFound = errors.New("immediate alert service not found")
	// ErrCharacteristicNotFound is returned when the service has no Alert Level characteristic.
	ErrCharacteristicNotFound = errors.New("alert level characteristic not found")
	// ErrNotConnected is returned when a link is used after it was closed.
	ErrNotConnected = errors.New("link is not connected")
	// ErrConnectTimeout is returned when a connection is not established in time.
	ErrConnectTimeout = errors.New("connect timed out")
	// errMalformedAddress is returned when an address string cannot be parsed.
	errMalformedAddress = errors.New("malformed address")
)

// Address is the fixed-size identifier of a peer.
type Address [6]byte

// ParseAddress parses "AA:BB:CC:DD:EE:FF" (or dash separated) into an Address.
func ParseAddress(s string) (Address, error) {
	var addr Address

	s = strings.ReplaceAll(strings.TrimSpace(s), "-", ":")

	parts := strings.Split(s, ":")
	if len(parts) != len(addr) {
		return addr, fmt.Errorf("parse %q: %w", s, errMalformedAddress)
	}

	for i, part := range parts {
		if len(part) != 2 {
			return Address{}, fmt.Errorf("parse %q: %w", s, errMalformedAddress)
		}

		b, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return Address{}, fmt.Errorf("parse %q: %w", s, errMalformedAddress)
		}

		addr[i] = byte(b)
	}

	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on malformed input.
// It is meant for constants and tests.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}

	return addr
}

// String renders the address in the usual colon separated form.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Advertisement is one scan result.
type Advertisement struct {
	// Address identifies the advertiser.
	Address Address
	// Name is the advertised local name.
	Name string
	// Services lists the advertised 16-bit service UUIDs.
	Services []UUID16
}

// HasService reports whether the advertisement lists the service.
func (a Advertisement) HasService(service UUID16) bool {
	for _, s := range a.Services {
		if s == service {
			return true
		}
	}

	return false
}

// AlertLevel is the Alert Level characteristic of a connected peer.
type AlertLevel interface {
	// Write sets the alert level on the peer.
	Write(level alert.Severity) error
}

// Link is a live connection to one peer.
type Link interface {
	// Address returns the peer address.
	Address() Address
	// AlertLevel looks up the Alert Level characteristic of the Immediate Alert service.
	AlertLevel() (AlertLevel, error)
	// Disconnect requests the link to be torn down.
	Disconnect() error
	// Connected reports whether the link is still up.
	Connected() bool
}

// Transport is the set of radio lifecycle operations the core needs.
type Transport interface {
	// StartAdvertising starts advertising the local Immediate Alert service.
	StartAdvertising() error
	// StopAdvertising stops advertising.
	StopAdvertising() error
	// Advertising reports whether advertising is active.
	Advertising() bool
	// Connected reports whether a central is connected to this device.
	Connected() bool
	// Scan collects advertisements listing service for at most timeout.
	Scan(ctx context.Context, service UUID16, timeout time.Duration) ([]Advertisement, error)
	// Connect opens a link to addr within timeout.
	Connect(ctx context.Context, addr Address, timeout time.Duration) (Link, error)
	// LocalAlert returns the value last written to this device's own Alert Level.
	LocalAlert() alert.Severity
	// ResetLocalAlert sets this device's own Alert Level back to None.
	ResetLocalAlert() error
}

// AlertInjector is implemented by transports that can simulate a remote peer
// writing this device's Alert Level.
type AlertInjector interface {
	WriteLocalAlert(level alert.Severity)
}
