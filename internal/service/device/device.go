package device

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/findme/internal/board"
	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/ledger"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/radio"
	"github.com/oshokin/findme/internal/tick"
	"github.com/oshokin/findme/internal/tone"
	"github.com/oshokin/findme/internal/ui"
)

var (
	// errBoardRequired is returned when no board is provided.
	errBoardRequired = errors.New("board must be provided")
	// errRadioRequired is returned when no transport is provided.
	errRadioRequired = errors.New("radio must be provided")
	// errClockRequired is returned when no clock is provided.
	errClockRequired = errors.New("clock must be provided")
)

// Params wires a device to its hardware.
type Params struct {
	// Board holds the buttons, LEDs and piezo.
	Board *board.Board
	// Radio is the transport.
	Radio radio.Transport
	// Clock is the millisecond counter driving every timer.
	Clock tick.Clock
	// Settings are the device settings; defaults are used when nil.
	Settings *config.Config
}

// Status is a copy of the device state taken at the end of a pass.
type Status struct {
	// State is the role and selected severity.
	State alert.RoleState
	// LocalAlert is the alert level written by peers.
	LocalAlert alert.Severity
	// Connected reports whether a central is connected.
	Connected bool
	// Advertising reports whether the device advertises.
	Advertising bool
	// UI is the reconciled LED patterns and tone request.
	UI ui.Snapshot
	// LitA and LitB are the LED levels written in the pass.
	LitA, LitB bool
	// Playing is the tune being played, or "".
	Playing string
	// Peers is the number of tracked peers.
	Peers int
	// CancelPassesLeft is the remaining cancel budget.
	CancelPassesLeft int
}

// Device is one find-me tag. Tick must be called from a single goroutine;
// Status may be called from any goroutine.
type Device struct {
	// ctx carries the device logger.
	ctx context.Context
	// board holds the inputs and outputs.
	board *board.Board
	// radio is the transport.
	radio radio.Transport
	// player sequences tunes on the piezo.
	player *tone.Player
	// ledger is shared with the locator and cleared on reset.
	ledger *ledger.Ledger
	// state is the role state machine.
	state alert.RoleState
	// target runs while the role is Target.
	target *targetCoordinator
	// locator runs while locating or cancelling.
	locator *locatorCoordinator
	// uiTimer advances the marquee.
	uiTimer *tick.Timer
	// marquee is the flash phase shared by both LEDs.
	marquee *ui.Marquee

	// mu protects status.
	mu sync.Mutex
	// status is published at the end of each pass.
	status Status
}

// New builds a device in the Target role.
func New(ctx context.Context, p Params) (*Device, error) {
	switch {
	case p.Board == nil:
		return nil, errBoardRequired
	case p.Radio == nil:
		return nil, errRadioRequired
	case p.Clock == nil:
		return nil, errClockRequired
	}

	settings := config.Default()
	if p.Settings != nil {
		copied := *p.Settings
		if err := config.Validate(&copied); err != nil {
			return nil, fmt.Errorf("validate settings: %w", err)
		}

		settings = &copied
	}

	ctx = logger.WithName(ctx, "device")

	player := tone.NewPlayer(ctx, p.Board.Piezo, p.Clock)

	high, err := player.Load(settings.Tunes.High)
	if err != nil {
		return nil, fmt.Errorf("load high tune: %w", err)
	}

	mild, err := player.Load(settings.Tunes.Mild)
	if err != nil {
		return nil, fmt.Errorf("load mild tune: %w", err)
	}

	//nolint:gosec // config.Validate bounds max_attempts to a byte.
	peers := ledger.New(settings.LedgerCapacity, uint8(settings.MaxAttempts))

	d := &Device{
		ctx:     ctx,
		board:   p.Board,
		radio:   p.Radio,
		player:  player,
		ledger:  peers,
		state:   alert.NewRoleState(),
		uiTimer: tick.NewTimer(p.Clock),
		marquee: ui.NewMarquee(),
	}

	d.target = newTargetCoordinator(ctx, p.Radio, player, map[alert.Severity]string{
		alert.High: high,
		alert.Mild: mild,
	})

	d.locator = newLocatorCoordinator(ctx, p.Radio, player, p.Clock, peers, locatorSettings{
		pattern:           settings.PeerPattern,
		interval:          settings.LocateInterval,
		scanTimeout:       settings.ScanTimeout,
		connectTimeout:    settings.ConnectTimeout,
		disconnectTimeout: settings.DisconnectTimeout,
		cancelPasses:      settings.CancelPasses,
	})

	d.uiTimer.ArmDuration(settings.UIInterval, true)
	d.publish(d.render(false))

	logger.InfoKV(ctx, "Device ready", "board", settings.Board, "name", settings.Name, "pattern", settings.PeerPattern,
		"ledger_capacity", d.ledger.Cap(), "max_attempts", d.ledger.Max())

	return d, nil
}

// Tick runs one scheduler pass.
func (d *Device) Tick(ctx context.Context) {
	d.apply(d.state.OnRelease(d.readButtons(), d.radio.LocalAlert(), d.radio.Connected()))

	if err := d.state.Validate(); err != nil {
		logger.ErrorKV(d.ctx, "Inconsistent role, resetting to target", "error", err)
		d.reset()
	}

	switch d.state.Role {
	case alert.Target:
		d.target.Tick()
	case alert.Locating, alert.Cancelling:
		if d.locator.Due() {
			// Both LEDs stay off while the locator owns the radio.
			d.render(true)

			if d.locator.Pass(ctx, d.state) {
				d.state.Complete()
				d.locator.Finish()
				logger.Info(d.ctx, "Cancel budget exhausted, back to target")
			}
		}
	}

	d.player.Tick()

	snapshot := d.render(false)

	if d.uiTimer.Poll() {
		d.marquee.Advance()
	}

	d.publish(snapshot)
}

// Status returns the state published by the last pass.
func (d *Device) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.status
}

// readButtons collects the release edges of this pass.
func (d *Device) readButtons() alert.Release {
	return alert.Release{
		High: d.board.High.Read() == board.EdgeReleased,
		Mild: d.board.Mild.Read() == board.EdgeReleased,
	}
}

// apply performs the side effect of a transition.
func (d *Device) apply(action alert.Action) {
	switch action {
	case alert.ActionNone:
		return
	case alert.ActionClearAlert:
		d.target.ClearAlert()
	case alert.ActionStartLocate:
		d.locator.StartLocate()
	case alert.ActionStartCancel:
		d.locator.StartCancel()
	}

	logger.InfoKV(d.ctx, "Role changed", "state", d.state.String(), "action", action.String())
}

// reset returns to Target with no tracked peers.
func (d *Device) reset() {
	d.state.Reset()
	d.locator.Finish()
}

// render reconciles the UI and writes the LEDs at the current marquee phase.
func (d *Device) render(busy bool) ui.Snapshot {
	snapshot := ui.Reconcile(ui.Inputs{
		State:       d.state,
		Connected:   d.radio.Connected(),
		Advertising: d.radio.Advertising(),
		LocalAlert:  d.radio.LocalAlert(),
		Busy:        busy,
	})

	phase := d.marquee.Bit()

	d.board.LedA.Write(snapshot.LedA.Lit(phase))
	d.board.LedB.Write(snapshot.LedB.Lit(phase))

	return snapshot
}

func (d *Device) publish(snapshot ui.Snapshot) {
	status := Status{
		State:            d.state,
		LocalAlert:       d.radio.LocalAlert(),
		Connected:        d.radio.Connected(),
		Advertising:      d.radio.Advertising(),
		UI:               snapshot,
		LitA:             d.board.LedA.On(),
		LitB:             d.board.LedB.On(),
		Playing:          d.player.Playing(),
		Peers:            d.ledger.Len(),
		CancelPassesLeft: d.locator.PassesLeft(),
	}

	d.mu.Lock()
	d.status = status
	d.mu.Unlock()
}
