package air

import (
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/radio"
)

// ErrWriteRejected is returned when a scripted write failure is consumed.
var ErrWriteRejected = errors.New("alert level write rejected")

// link is an outbound connection to a virtual peer.
type link struct {
	// peer is the remote end.
	peer *Peer
	// mu protects the fields below.
	mu sync.Mutex
	// open is false once Disconnect was called.
	open bool
	// linger is the number of Connected polls still reporting true after
	// Disconnect.
	linger int
	// lingerPolls is the value linger is set to on Disconnect.
	lingerPolls int
}

func (l *link) Address() radio.Address {
	return l.peer.Address()
}

func (l *link) AlertLevel() (radio.AlertLevel, error) {
	if !l.isOpen() {
		return nil, fmt.Errorf("look up alert level of %s: %w", l.peer.Address(), radio.ErrNotConnected)
	}

	if !l.peer.lookup() {
		return nil, fmt.Errorf("look up alert level of %s: %w", l.peer.Address(), radio.ErrServiceNotFound)
	}

	return characteristic{link: l}, nil
}

func (l *link) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.open {
		return nil
	}

	l.open = false
	l.linger = l.lingerPolls

	return nil
}

func (l *link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.open {
		return true
	}

	if l.linger > 0 {
		l.linger--
		return true
	}

	return false
}

func (l *link) isOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.open
}

// characteristic is the Alert Level characteristic of a linked peer.
type characteristic struct {
	// link is the connection the characteristic was found on.
	link *link
}

func (c characteristic) Write(level alert.Severity) error {
	if !c.link.isOpen() {
		return fmt.Errorf("write %s to %s: %w", level, c.link.peer.Address(), radio.ErrNotConnected)
	}

	if !c.link.peer.write(level) {
		return fmt.Errorf("write %s to %s: %w", level, c.link.peer.Address(), ErrWriteRejected)
	}

	return nil
}
