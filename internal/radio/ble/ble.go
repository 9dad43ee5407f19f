package ble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/radio"
)

// stopScanRetry is the delay between StopScan attempts.
const stopScanRetry = 10 * time.Millisecond

// errUnknownAddress is returned when connecting to an address never seen in a scan.
var errUnknownAddress = errors.New("address was not seen in a scan")

// Transport is a radio.Transport over the default host adapter.
type Transport struct {
	// ctx carries the transport logger.
	ctx context.Context
	// adapter is the host Bluetooth adapter.
	adapter *bluetooth.Adapter
	// adv is the configured default advertisement.
	adv *bluetooth.Advertisement
	// char is the local Alert Level characteristic.
	char bluetooth.Characteristic
	// localAlert holds the last value a peer wrote to char.
	localAlert atomic.Uint32
	// mu protects the fields below.
	mu sync.Mutex
	// advertising is true between StartAdvertising and StopAdvertising.
	advertising bool
	// seen maps scanned addresses to adapter addresses.
	seen map[radio.Address]bluetooth.Address
	// outbound holds the links this device opened as a central, keyed by
	// address. A nil link marks a connection still being established.
	outbound map[radio.Address]*link
	// centrals holds the addresses of centrals connected to this device.
	centrals map[radio.Address]bool
}

// New enables the default adapter, registers the Immediate Alert service and
// configures the advertisement under name.
func New(ctx context.Context, name string) (*Transport, error) {
	t := newTransport(ctx)
	t.adapter = bluetooth.DefaultAdapter

	if err := t.adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable adapter: %w", err)
	}

	t.adapter.SetConnectHandler(t.onConnect)

	serviceUUID := bluetooth.New16BitUUID(uint16(radio.ImmediateAlertService))

	err := t.adapter.AddService(&bluetooth.Service{
		UUID: serviceUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &t.char,
				UUID:   bluetooth.New16BitUUID(uint16(radio.AlertLevelCharacteristic)),
				Value:  []byte{alert.None.Byte()},
				Flags: bluetooth.CharacteristicReadPermission |
					bluetooth.CharacteristicWritePermission |
					bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: t.onAlertWrite,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("add immediate alert service: %w", err)
	}

	t.adv = t.adapter.DefaultAdvertisement()

	err = t.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    name,
		ServiceUUIDs: []bluetooth.UUID{serviceUUID},
	})
	if err != nil {
		return nil, fmt.Errorf("configure advertisement: %w", err)
	}

	return t, nil
}

// StartAdvertising implements radio.Transport.
func (t *Transport) StartAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.advertising {
		return nil
	}

	if err := t.adv.Start(); err != nil {
		return fmt.Errorf("start advertising: %w", err)
	}

	t.advertising = true

	return nil
}

// StopAdvertising implements radio.Transport.
func (t *Transport) StopAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.advertising {
		return nil
	}

	if err := t.adv.Stop(); err != nil {
		return fmt.Errorf("stop advertising: %w", err)
	}

	t.advertising = false

	return nil
}

// Advertising implements radio.Transport.
func (t *Transport) Advertising() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.advertising
}

// Connected implements radio.Transport.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.centrals) > 0
}

// Scan implements radio.Transport. The adapter scan runs until timeout or
// until ctx is done, results are deduplicated by address.
func (t *Transport) Scan(ctx context.Context, service radio.UUID16, timeout time.Duration) ([]radio.Advertisement, error) {
	want := bluetooth.New16BitUUID(uint16(service))

	var (
		mu      sync.Mutex
		results = make(map[radio.Address]radio.Advertisement)
	)

	done := make(chan struct{})
	defer close(done)

	go t.stopScanAfter(ctx, timeout, done)

	err := t.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		if !result.HasServiceUUID(want) {
			return
		}

		addr, err := radio.ParseAddress(result.Address.String())
		if err != nil {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		results[addr] = radio.Advertisement{
			Address:  addr,
			Name:     result.LocalName(),
			Services: []radio.UUID16{service},
		}

		t.remember(addr, result.Address)
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	out := make([]radio.Advertisement, 0, len(results))
	for _, adv := range results {
		out = append(out, adv)
	}

	return out, nil
}

// Connect implements radio.Transport.
func (t *Transport) Connect(ctx context.Context, addr radio.Address, timeout time.Duration) (radio.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	t.mu.Lock()
	target, ok := t.seen[addr]
	t.outbound[addr] = nil
	t.mu.Unlock()

	if !ok {
		t.forget(addr)
		return nil, fmt.Errorf("connect %s: %w", addr, errUnknownAddress)
	}

	device, err := t.adapter.Connect(target, bluetooth.ConnectionParams{
		ConnectionTimeout: bluetooth.NewDuration(timeout),
	})
	if err != nil {
		t.forget(addr)
		return nil, fmt.Errorf("connect %s: %w: %w", addr, radio.ErrConnectTimeout, err)
	}

	return t.track(addr, device, device.Disconnect), nil
}

// LocalAlert implements radio.Transport.
func (t *Transport) LocalAlert() alert.Severity {
	return alert.Severity(t.localAlert.Load()) //nolint:gosec // Only severities are stored.
}

// ResetLocalAlert implements radio.Transport. The characteristic value is
// reset too so a reading peer sees None.
func (t *Transport) ResetLocalAlert() error {
	t.localAlert.Store(uint32(alert.None))

	if _, err := t.char.Write([]byte{alert.None.Byte()}); err != nil {
		return fmt.Errorf("reset alert level: %w", err)
	}

	return nil
}

// stopScanAfter stops the adapter scan after timeout or when ctx is done.
// StopScan fails until the scan has actually started, so it is retried until
// done is closed.
func (t *Transport) stopScanAfter(ctx context.Context, timeout time.Duration, done <-chan struct{}) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-done:
		return
	}

	for t.adapter.StopScan() != nil {
		select {
		case <-done:
			return
		case <-time.After(stopScanRetry):
		}
	}
}

func (t *Transport) onAlertWrite(_ bluetooth.Connection, offset int, value []byte) {
	if offset != 0 || len(value) == 0 {
		return
	}

	level := alert.ParseSeverity(value[0])
	t.localAlert.Store(uint32(level))

	logger.InfoKV(t.ctx, "Alert level written", "level", level.String())
}

func (t *Transport) onConnect(device bluetooth.Device, connected bool) {
	addr, err := radio.ParseAddress(device.Address.String())
	if err != nil {
		logger.WarnKV(t.ctx, "Connection event with unparsable address",
			"address", device.Address.String(), "error", err)

		return
	}

	t.connectionChanged(addr, connected)
}

// connectionChanged applies an adapter connection event. Events for outbound
// links close the link on disconnect; the others track connected centrals.
func (t *Transport) connectionChanged(addr radio.Address, connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.outbound[addr]; ok {
		if !connected {
			if l != nil {
				l.markClosed()
			}

			delete(t.outbound, addr)
			logger.DebugKV(t.ctx, "Outbound link closed", "address", addr.String())
		}

		return
	}

	if connected {
		t.centrals[addr] = true
		// A peripheral stops advertising once a central connects.
		t.advertising = false
	} else {
		delete(t.centrals, addr)
	}

	logger.DebugKV(t.ctx, "Central connection changed", "address", addr.String(), "connected", connected)
}

// newTransport returns a transport with empty connection state and no adapter.
func newTransport(ctx context.Context) *Transport {
	return &Transport{
		ctx:      logger.WithName(ctx, "ble"),
		seen:     make(map[radio.Address]bluetooth.Address),
		outbound: make(map[radio.Address]*link),
		centrals: make(map[radio.Address]bool),
	}
}

// track registers an established outbound link.
func (t *Transport) track(addr radio.Address, device bluetooth.Device, closer func() error) *link {
	l := &link{addr: addr, device: device, closer: closer}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.outbound[addr] = l

	return l
}

func (t *Transport) remember(addr radio.Address, target bluetooth.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seen[addr] = target
}

func (t *Transport) forget(addr radio.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.outbound, addr)
}

var _ radio.Transport = (*Transport)(nil)
