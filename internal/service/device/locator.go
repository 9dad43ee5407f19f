package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/ledger"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/radio"
	"github.com/oshokin/findme/internal/tick"
	"github.com/oshokin/findme/internal/tone"
)

// disconnectPoll is the delay between link state checks while waiting for a
// disconnect.
const disconnectPoll = 5 * time.Millisecond

// errDisconnectTimeout is logged when a link stays up past the disconnect timeout.
var errDisconnectTimeout = errors.New("disconnect timed out")

// locatorSettings holds the locator timings and budgets.
type locatorSettings struct {
	// pattern is the substring a peer name must contain.
	pattern string
	// interval is the pass period.
	interval time.Duration
	// scanTimeout bounds the discovery scan.
	scanTimeout time.Duration
	// connectTimeout bounds each connect.
	connectTimeout time.Duration
	// disconnectTimeout bounds the disconnect wait.
	disconnectTimeout time.Duration
	// cancelPasses is the cancel budget.
	cancelPasses int
}

// locatorCoordinator drives peers into alert and cancels them again.
type locatorCoordinator struct {
	// ctx carries the coordinator logger.
	ctx context.Context
	// radio is the transport.
	radio radio.Transport
	// player is silenced on every pass.
	player *tone.Player
	// clock paces the disconnect wait.
	clock tick.Clock
	// ledger tracks per-peer writes.
	ledger *ledger.Ledger
	// timer schedules passes.
	timer *tick.Timer
	// settings are the timings and budgets.
	settings locatorSettings
	// passesLeft is the remaining cancel budget.
	passesLeft int
}

func newLocatorCoordinator(
	ctx context.Context,
	transport radio.Transport,
	player *tone.Player,
	clock tick.Clock,
	peers *ledger.Ledger,
	settings locatorSettings,
) *locatorCoordinator {
	return &locatorCoordinator{
		ctx:      logger.WithName(ctx, "locator"),
		radio:    transport,
		player:   player,
		clock:    clock,
		ledger:   peers,
		timer:    tick.NewTimer(clock),
		settings: settings,
	}
}

// StartLocate forgets previous peers and schedules an immediate pass.
func (l *locatorCoordinator) StartLocate() {
	l.ledger.Clear()
	l.passesLeft = 0
	l.schedule()
}

// StartCancel drops peers that were never alerted, sets the cancel budget
// and schedules an immediate pass.
func (l *locatorCoordinator) StartCancel() {
	l.ledger.Prune()
	l.passesLeft = l.settings.cancelPasses
	l.schedule()
}

// Finish stops the passes and forgets every peer.
func (l *locatorCoordinator) Finish() {
	l.timer.Stop()
	l.ledger.Clear()
	l.passesLeft = 0
}

// Due reports whether a pass should run now.
func (l *locatorCoordinator) Due() bool {
	return l.timer.Poll()
}

// PassesLeft returns the remaining cancel budget.
func (l *locatorCoordinator) PassesLeft() int {
	return l.passesLeft
}

// Pass runs one locate or cancel pass for state. It reports true when the
// cancel budget is exhausted and the device must return to target.
func (l *locatorCoordinator) Pass(ctx context.Context, state alert.RoleState) bool {
	if l.radio.Advertising() {
		if err := l.radio.StopAdvertising(); err != nil {
			logger.WarnKV(l.ctx, "Failed to stop advertising", "error", err)
		}
	}

	if l.player.Playing() != "" {
		l.player.Stop()
	}

	if state.Role == alert.Locating {
		l.discover(ctx)
	}

	l.dispatch(ctx, state)

	if state.Role != alert.Cancelling {
		return false
	}

	l.passesLeft--
	logger.DebugKV(l.ctx, "Cancel pass done", "passes_left", l.passesLeft, "peers", l.ledger.Len())

	return l.passesLeft <= 0
}

// discover scans for tags and adds new ones to the ledger.
func (l *locatorCoordinator) discover(ctx context.Context) {
	ads, err := l.radio.Scan(ctx, radio.ImmediateAlertService, l.settings.scanTimeout)
	if err != nil {
		logger.WarnKV(l.ctx, "Scan failed", "error", err)
		return
	}

	for _, adv := range ads {
		if !strings.Contains(adv.Name, l.settings.pattern) {
			continue
		}

		added, err := l.ledger.Observe(adv.Address)
		if err != nil {
			logger.WarnKV(l.ctx, "Peer not tracked", "address", adv.Address.String(), "error", err)
			continue
		}

		if added {
			logger.InfoKV(l.ctx, "Peer found", "address", adv.Address.String(), "name", adv.Name)
		}
	}
}

// dispatch writes the role's severity to every pending peer.
func (l *locatorCoordinator) dispatch(ctx context.Context, state alert.RoleState) {
	level := state.PushSeverity()

	for _, addr := range l.ledger.Pending(state.Role) {
		if ctx.Err() != nil {
			return
		}

		peerCtx := logger.WithKV(l.ctx, "address", addr.String())

		if err := l.push(ctx, addr, level); err != nil {
			logger.WarnKV(peerCtx, "Alert write failed", "level", level.String(), "error", err)
			continue
		}

		l.ledger.Succeeded(addr, state.Role)

		count, _ := l.ledger.Counter(addr)
		logger.DebugKV(peerCtx, "Alert written", "level", level.String(), "count", count)
	}
}

// push connects to addr, writes level and disconnects.
func (l *locatorCoordinator) push(ctx context.Context, addr radio.Address, level alert.Severity) error {
	link, err := l.radio.Connect(ctx, addr, l.settings.connectTimeout)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	defer l.disconnect(link)

	char, err := link.AlertLevel()
	if err != nil {
		return fmt.Errorf("look up alert level: %w", err)
	}

	if err = char.Write(level); err != nil {
		return fmt.Errorf("write alert level: %w", err)
	}

	return nil
}

// disconnect tears link down and waits for it to go away, at most for the
// disconnect timeout.
func (l *locatorCoordinator) disconnect(link radio.Link) {
	if err := link.Disconnect(); err != nil {
		logger.WarnKV(l.ctx, "Disconnect failed", "address", link.Address().String(), "error", err)
	}

	wait := tick.NewTimer(l.clock)
	wait.ArmDuration(l.settings.disconnectTimeout, false)

	for link.Connected() {
		// A zero timeout leaves the timer disarmed; a fired one-shot disarms it.
		if !wait.Armed() || wait.Poll() {
			logger.WarnKV(l.ctx, "Link still up", "address", link.Address().String(), "error", errDisconnectTimeout)
			return
		}

		l.clock.Sleep(disconnectPoll)
	}
}

func (l *locatorCoordinator) schedule() {
	l.timer.ArmDuration(l.settings.interval, true)
	l.timer.Fire()
}
