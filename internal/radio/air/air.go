package air

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/radio"
)

// Air is the simulated radio of the local device.
type Air struct {
	// mu protects the fields below.
	mu sync.Mutex
	// peers are the virtual devices in the air, reachable or not.
	peers []*Peer
	// advertising is true while the local device advertises.
	advertising bool
	// central is true while a central is connected to the local device.
	central bool
	// disconnectPolls is how many Connected polls a link keeps reporting
	// true after Disconnect.
	disconnectPolls int
	// scans counts Scan calls.
	scans int
	// localAlert is the local Alert Level, written from other goroutines.
	localAlert atomic.Uint32
}

// Option configures an Air.
type Option func(*Air)

// WithPeers puts peers in the air.
func WithPeers(peers ...*Peer) Option {
	return func(a *Air) {
		a.peers = append(a.peers, peers...)
	}
}

// WithDisconnectPolls delays link teardown by n Connected polls.
func WithDisconnectPolls(n int) Option {
	return func(a *Air) {
		a.disconnectPolls = n
	}
}

// New returns an idle radio.
func New(opts ...Option) *Air {
	a := new(Air)
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// AddPeer puts a peer in the air. A peer with the same address is replaced.
func (a *Air) AddPeer(p *Peer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.peers = slices.DeleteFunc(a.peers, func(q *Peer) bool {
		return q.Address() == p.Address()
	})
	a.peers = append(a.peers, p)
}

// RemovePeer takes the peer with addr out of the air and reports whether it
// was present.
func (a *Air) RemovePeer(addr radio.Address) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.peers)
	a.peers = slices.DeleteFunc(a.peers, func(p *Peer) bool {
		return p.Address() == addr
	})

	return len(a.peers) != n
}

// Peers returns the peers in the air in insertion order.
func (a *Air) Peers() []*Peer {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.peers)
}

// Peer returns the peer with addr.
func (a *Air) Peer(addr radio.Address) (*Peer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, p := range a.peers {
		if p.Address() == addr {
			return p, true
		}
	}

	return nil, false
}

// SetCentral connects or disconnects a remote central. A connecting central
// ends advertising the way a peripheral controller does.
func (a *Air) SetCentral(connected bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.central = connected
	if connected {
		a.advertising = false
	}
}

// Scans returns the number of scans performed.
func (a *Air) Scans() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.scans
}

// StartAdvertising implements radio.Transport.
func (a *Air) StartAdvertising() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.advertising = true

	return nil
}

// StopAdvertising implements radio.Transport.
func (a *Air) StopAdvertising() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.advertising = false

	return nil
}

// Advertising implements radio.Transport.
func (a *Air) Advertising() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.advertising
}

// Connected implements radio.Transport.
func (a *Air) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.central
}

// Scan returns the reachable peers advertising service. It does not wait
// for the timeout.
func (a *Air) Scan(ctx context.Context, service radio.UUID16, _ time.Duration) ([]radio.Advertisement, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	peers := a.countScan()
	out := make([]radio.Advertisement, 0, len(peers))

	for _, p := range peers {
		adv, ok := p.advertisement()
		if ok && adv.HasService(service) {
			out = append(out, adv)
		}
	}

	return out, nil
}

// Connect implements radio.Transport. Unknown, unreachable and scripted
// failing peers time out.
func (a *Air) Connect(ctx context.Context, addr radio.Address, _ time.Duration) (radio.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	p, ok := a.Peer(addr)
	if !ok || !p.accept() {
		return nil, fmt.Errorf("connect %s: %w", addr, radio.ErrConnectTimeout)
	}

	a.mu.Lock()
	polls := a.disconnectPolls
	a.mu.Unlock()

	return &link{peer: p, open: true, lingerPolls: polls}, nil
}

// LocalAlert implements radio.Transport.
func (a *Air) LocalAlert() alert.Severity {
	return alert.Severity(a.localAlert.Load()) //nolint:gosec // Only severities are stored.
}

// ResetLocalAlert implements radio.Transport.
func (a *Air) ResetLocalAlert() error {
	a.localAlert.Store(uint32(alert.None))

	return nil
}

// WriteLocalAlert implements radio.AlertInjector.
func (a *Air) WriteLocalAlert(level alert.Severity) {
	a.localAlert.Store(uint32(level))
}

func (a *Air) countScan() []*Peer {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.scans++

	return slices.Clone(a.peers)
}

var (
	_ radio.Transport     = (*Air)(nil)
	_ radio.AlertInjector = (*Air)(nil)
)
