package ble

import (
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/radio"
)

// link is an outbound connection made as a central. It stays connected until
// the adapter reports the disconnect event, which may arrive well after
// Disconnect returned.
type link struct {
	// addr is the peer address.
	addr radio.Address
	// device is the adapter connection.
	device bluetooth.Device
	// closer asks the adapter to drop the connection.
	closer func() error
	// mu protects the fields below.
	mu sync.Mutex
	// requested is true once Disconnect succeeded.
	requested bool
	// closed is true once the adapter reported the disconnect.
	closed bool
}

func (l *link) Address() radio.Address {
	return l.addr
}

func (l *link) AlertLevel() (radio.AlertLevel, error) {
	services, err := l.device.DiscoverServices([]bluetooth.UUID{
		bluetooth.New16BitUUID(uint16(radio.ImmediateAlertService)),
	})
	if err != nil || len(services) == 0 {
		return nil, fmt.Errorf("discover services of %s: %w", l.addr, radio.ErrServiceNotFound)
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{
		bluetooth.New16BitUUID(uint16(radio.AlertLevelCharacteristic)),
	})
	if err != nil || len(chars) == 0 {
		return nil, fmt.Errorf("discover characteristics of %s: %w", l.addr, radio.ErrCharacteristicNotFound)
	}

	return &alertLevel{link: l, char: chars[0]}, nil
}

func (l *link) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.requested || l.closed {
		return nil
	}

	if err := l.closer(); err != nil {
		return fmt.Errorf("disconnect %s: %w", l.addr, err)
	}

	l.requested = true

	return nil
}

func (l *link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return !l.closed
}

// usable reports whether the link may still carry writes.
func (l *link) usable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return !l.requested && !l.closed
}

// markClosed records the adapter disconnect event.
func (l *link) markClosed() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
}

// alertLevel is the remote Alert Level characteristic.
type alertLevel struct {
	// link is the connection the characteristic belongs to.
	link *link
	// char is the discovered characteristic.
	char bluetooth.DeviceCharacteristic
}

func (a *alertLevel) Write(level alert.Severity) error {
	if !a.link.usable() {
		return fmt.Errorf("write %s to %s: %w", level, a.link.addr, radio.ErrNotConnected)
	}

	if _, err := a.char.WriteWithoutResponse([]byte{level.Byte()}); err != nil {
		return fmt.Errorf("write %s to %s: %w", level, a.link.addr, err)
	}

	return nil
}
