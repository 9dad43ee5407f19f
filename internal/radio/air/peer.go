package air

import (
	"slices"
	"sync"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/radio"
)

// Peer is a virtual find-me tag in range of the local device.
type Peer struct {
	// mu protects the fields below.
	mu sync.Mutex
	// address identifies the peer.
	address radio.Address
	// name is the advertised local name.
	name string
	// services lists the advertised services.
	services []radio.UUID16
	// reachable is false when the peer is out of range.
	reachable bool
	// connectFailures is the number of upcoming connects to refuse.
	connectFailures int
	// lookupFailures is the number of upcoming service lookups to fail.
	lookupFailures int
	// writeFailures is the number of upcoming writes to reject.
	writeFailures int
	// level is the last alert level written to the peer.
	level alert.Severity
	// writes logs every accepted write.
	writes []alert.Severity
}

// NewPeer returns a reachable peer advertising the Immediate Alert service.
func NewPeer(address radio.Address, name string) *Peer {
	return &Peer{
		address:   address,
		name:      name,
		services:  []radio.UUID16{radio.ImmediateAlertService},
		reachable: true,
	}
}

// Address returns the peer address.
func (p *Peer) Address() radio.Address {
	return p.address
}

// Name returns the advertised name.
func (p *Peer) Name() string {
	return p.name
}

// SetServices replaces the advertised services.
func (p *Peer) SetServices(services ...radio.UUID16) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.services = slices.Clone(services)
}

// SetReachable moves the peer in or out of range.
func (p *Peer) SetReachable(reachable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reachable = reachable
}

// Reachable reports whether the peer is in range.
func (p *Peer) Reachable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.reachable
}

// FailConnects makes the next n connects to the peer time out.
func (p *Peer) FailConnects(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connectFailures = n
}

// FailLookups makes the next n service lookups report the service missing.
func (p *Peer) FailLookups(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lookupFailures = n
}

// FailWrites makes the next n alert level writes fail.
func (p *Peer) FailWrites(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.writeFailures = n
}

// Level returns the last alert level written to the peer.
func (p *Peer) Level() alert.Severity {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.level
}

// Writes returns a copy of the accepted writes in order.
func (p *Peer) Writes() []alert.Severity {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.writes)
}

func (p *Peer) advertisement() (radio.Advertisement, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.reachable {
		return radio.Advertisement{}, false
	}

	return radio.Advertisement{
		Address:  p.address,
		Name:     p.name,
		Services: slices.Clone(p.services),
	}, true
}

func (p *Peer) accept() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.reachable {
		return false
	}

	if p.connectFailures > 0 {
		p.connectFailures--
		return false
	}

	return true
}

func (p *Peer) lookup() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lookupFailures > 0 {
		p.lookupFailures--
		return false
	}

	return slices.Contains(p.services, radio.ImmediateAlertService)
}

func (p *Peer) write(level alert.Severity) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeFailures > 0 {
		p.writeFailures--
		return false
	}

	p.level = level
	p.writes = append(p.writes, level)

	return true
}
