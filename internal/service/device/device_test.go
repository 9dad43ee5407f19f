package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/findme/internal/board/virtual"
	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/radio"
	"github.com/oshokin/findme/internal/radio/air"
	"github.com/oshokin/findme/internal/tick"
	"github.com/oshokin/findme/internal/ui"
)

const passStep = 5 * time.Millisecond

var (
	addrP     = radio.MustParseAddress("C0:FF:EE:00:00:01")
	addrOther = radio.MustParseAddress("C0:FF:EE:00:00:02")
)

// fixture is a device on a virtual board and an in-memory radio.
type fixture struct {
	// board is the virtual board.
	board *virtual.Board
	// air is the simulated radio.
	air *air.Air
	// clock drives every timer.
	clock *tick.ManualClock
	// dev is the device under test.
	dev *Device
}

// newFixture builds a device with default settings and the given peers.
func newFixture(t *testing.T, peers ...*air.Peer) *fixture {
	t.Helper()

	f := &fixture{
		board: virtual.NewBoard(),
		air:   air.New(air.WithPeers(peers...)),
		clock: tick.NewManualClock(0),
	}

	dev, err := New(context.Background(), Params{
		Board: &f.board.Board,
		Radio: f.air,
		Clock: f.clock,
	})
	require.NoError(t, err)

	f.dev = dev

	return f
}

// tick runs n scheduler passes, advancing the clock after each.
func (f *fixture) tick(n int) {
	for range n {
		f.dev.Tick(context.Background())
		f.clock.Advance(passStep)
	}
}

// tap presses and releases a button over two passes.
func (f *fixture) tap(press func()) {
	press()
	f.tick(2)
}

// nextPass moves to the next locator period and runs one pass.
func (f *fixture) nextPass() {
	f.clock.Advance(config.DefaultLocateInterval)
	f.tick(1)
}

// TestNew_RequiresHardware rejects missing collaborators.
func TestNew_RequiresHardware(t *testing.T) {
	t.Parallel()

	b := virtual.NewBoard()
	clock := tick.NewManualClock(0)

	_, err := New(context.Background(), Params{Radio: air.New(), Clock: clock})
	require.ErrorIs(t, err, errBoardRequired)

	_, err = New(context.Background(), Params{Board: &b.Board, Clock: clock})
	require.ErrorIs(t, err, errRadioRequired)

	_, err = New(context.Background(), Params{Board: &b.Board, Radio: air.New()})
	require.ErrorIs(t, err, errClockRequired)

	_, err = New(context.Background(), Params{
		Board:    &b.Board,
		Radio:    air.New(),
		Clock:    clock,
		Settings: &config.Config{Tunes: config.Tunes{Mild: "nope"}},
	})
	require.Error(t, err)
}

// TestTick_AdvertisesUntilConnected covers boot advertising and a central connecting.
func TestTick_AdvertisesUntilConnected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.tick(1)

	status := f.dev.Status()
	require.Equal(t, alert.Target, status.State.Role)
	require.True(t, status.Advertising)
	require.Equal(t, ui.SingleFlash, status.UI.LedA)
	require.Equal(t, ui.Off, status.UI.LedB)

	f.air.SetCentral(true)
	f.tick(1)

	status = f.dev.Status()
	require.True(t, status.Connected)
	require.False(t, status.Advertising)
	require.Equal(t, ui.DoubleFlash, status.UI.LedA)

	// Advertising resumes once the central leaves.
	f.air.SetCentral(false)
	f.tick(1)
	require.True(t, f.dev.Status().Advertising)
}

// TestTick_LocateHigh alerts a matching peer and ignores other names.
func TestTick_LocateHigh(t *testing.T) {
	t.Parallel()

	p := air.NewPeer(addrP, "Find Me")
	other := air.NewPeer(addrOther, "Headphones")
	f := newFixture(t, p, other)
	f.tick(1)

	f.tap(f.board.TapHigh)

	status := f.dev.Status()
	require.Equal(t, alert.RoleState{Role: alert.Locating, Severity: alert.High}, status.State)
	require.False(t, status.Advertising)
	require.Equal(t, 1, status.Peers)
	require.Equal(t, ui.InvertedFlash, status.UI.LedA)
	require.Equal(t, ui.InvertedDoubleFlash, status.UI.LedB)

	count, ok := f.dev.ledger.Counter(addrP)
	require.True(t, ok)
	require.Equal(t, uint8(1), count)
	require.Equal(t, alert.High, p.Level())
	require.Empty(t, other.Writes())
}

// TestTick_LocateFreezesAtMax stops writing once a peer got every attempt.
func TestTick_LocateFreezesAtMax(t *testing.T) {
	t.Parallel()

	p := air.NewPeer(addrP, "Find Me")
	f := newFixture(t, p)

	f.tap(f.board.TapMild)

	for range 4 {
		f.nextPass()
	}

	count, _ := f.dev.ledger.Counter(addrP)
	require.Equal(t, uint8(config.DefaultMaxAttempts), count)
	require.Equal(t, []alert.Severity{alert.Mild, alert.Mild, alert.Mild}, p.Writes())
	require.Equal(t, alert.Locating, f.dev.Status().State.Role)
}

// TestTick_CancelAfterBudget cancels a peer and returns to target after the budget.
func TestTick_CancelAfterBudget(t *testing.T) {
	t.Parallel()

	p := air.NewPeer(addrP, "Find Me")
	f := newFixture(t, p)

	f.tap(f.board.TapHigh)
	f.tap(f.board.TapMild)

	status := f.dev.Status()
	require.Equal(t, alert.Cancelling, status.State.Role)
	require.Equal(t, alert.None, p.Level())
	require.Zero(t, status.Peers)
	require.Equal(t, config.DefaultCancelPasses-1, status.CancelPassesLeft)
	require.Equal(t, ui.Steady, status.UI.LedB)

	f.nextPass()
	require.Equal(t, alert.Cancelling, f.dev.Status().State.Role)

	f.nextPass()

	status = f.dev.Status()
	require.Equal(t, alert.NewRoleState(), status.State)
	require.Zero(t, status.Peers)
	require.Equal(t, []alert.Severity{alert.High, alert.None}, p.Writes())
}

// TestTick_CancelIsBestEffort abandons an unreachable peer after the budget.
func TestTick_CancelIsBestEffort(t *testing.T) {
	t.Parallel()

	p := air.NewPeer(addrP, "Find Me")
	f := newFixture(t, p)

	f.tap(f.board.TapHigh)
	p.SetReachable(false)
	f.tap(f.board.TapMild)

	for range config.DefaultCancelPasses - 1 {
		require.Equal(t, alert.Cancelling, f.dev.Status().State.Role)
		require.Equal(t, 1, f.dev.Status().Peers)
		f.nextPass()
	}

	require.Equal(t, alert.Target, f.dev.Status().State.Role)
	require.Zero(t, f.dev.ledger.Len())
	require.Equal(t, alert.High, p.Level())
}

// TestTick_CancelReleaseIgnored leaves the budget alone on button releases.
func TestTick_CancelReleaseIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.tap(f.board.TapHigh)
	f.tap(f.board.TapHigh)
	f.tap(f.board.TapHigh)

	status := f.dev.Status()
	require.Equal(t, alert.Cancelling, status.State.Role)
	require.Equal(t, config.DefaultCancelPasses-1, status.CancelPassesLeft)
}

// TestTick_LocalAlertPlaysOnce plays the mild tune once and clears it on release.
func TestTick_LocalAlertPlaysOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.tick(1)

	f.air.WriteLocalAlert(alert.Mild)
	f.tick(1)

	status := f.dev.Status()
	require.Equal(t, "knightrl", status.Playing)
	require.Equal(t, ui.TonePlayMild, status.UI.Tone)
	require.Equal(t, ui.SingleFlash, status.UI.LedB)
	require.Equal(t, uint32(659), f.board.Speaker.Frequency())

	// A sixteenth at b=125 lasts 120 ms; a replayed tune would still be on its first note.
	f.clock.Advance(120 * time.Millisecond)
	f.tick(1)
	require.Zero(t, f.board.Speaker.Frequency())
	require.Equal(t, "knightrl", f.dev.Status().Playing)

	f.tap(f.board.TapHigh)

	status = f.dev.Status()
	require.Equal(t, alert.Target, status.State.Role)
	require.Equal(t, alert.None, status.LocalAlert)
	require.Empty(t, status.Playing)
	require.Equal(t, ui.ToneStop, status.UI.Tone)
	require.Zero(t, f.board.Speaker.Frequency())
}

// TestTick_RetriesFailedConnects counts one success after two failed passes.
func TestTick_RetriesFailedConnects(t *testing.T) {
	t.Parallel()

	p := air.NewPeer(addrP, "Find Me")
	p.FailConnects(2)

	f := newFixture(t, p)
	f.tap(f.board.TapHigh)

	count, _ := f.dev.ledger.Counter(addrP)
	require.Zero(t, count)

	f.nextPass()

	count, _ = f.dev.ledger.Counter(addrP)
	require.Zero(t, count)

	f.nextPass()

	count, _ = f.dev.ledger.Counter(addrP)
	require.Equal(t, uint8(1), count)
	require.Equal(t, []alert.Severity{alert.High}, p.Writes())
}

// TestTick_ConnectedTargetDoesNotLocate keeps the target role while a central is connected.
func TestTick_ConnectedTargetDoesNotLocate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, air.NewPeer(addrP, "Find Me"))
	f.air.SetCentral(true)
	f.tick(1)

	f.tap(f.board.TapHigh)

	require.Equal(t, alert.Target, f.dev.Status().State.Role)
	require.Zero(t, f.air.Scans())
}

// TestTick_UnknownRoleResets recovers from an inconsistent role.
func TestTick_UnknownRoleResets(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.dev.ledger.Observe(addrP)
	require.NoError(t, err)

	f.dev.state = alert.RoleState{Role: alert.Role(9), Severity: alert.High}
	f.tick(1)

	status := f.dev.Status()
	require.Equal(t, alert.NewRoleState(), status.State)
	require.Zero(t, status.Peers)
}

// busyRadio records the LED levels seen while scanning.
type busyRadio struct {
	*air.Air

	// board is read during scans.
	board *virtual.Board
	// lit records whether any LED was on during each scan.
	lit []bool
}

// Scan records the LED levels and scans.
func (b *busyRadio) Scan(ctx context.Context, service radio.UUID16, timeout time.Duration) ([]radio.Advertisement, error) {
	b.lit = append(b.lit, b.board.LedAPin.Level() || b.board.LedBPin.Level())

	return b.Air.Scan(ctx, service, timeout)
}

// TestTick_BusyFrame switches both LEDs off during a pass and back on after.
func TestTick_BusyFrame(t *testing.T) {
	t.Parallel()

	b := virtual.NewBoard()
	transport := &busyRadio{Air: air.New(), board: b}
	clock := tick.NewManualClock(0)

	dev, err := New(context.Background(), Params{Board: &b.Board, Radio: transport, Clock: clock})
	require.NoError(t, err)

	// Move the marquee two phases so InvertedFlash lights LED A.
	for range 2 {
		clock.Advance(config.DefaultUIInterval)
		dev.Tick(context.Background())
	}

	b.TapHigh()
	dev.Tick(context.Background())
	dev.Tick(context.Background())

	require.Equal(t, []bool{false}, transport.lit)
	require.True(t, dev.Status().LitA)
	require.True(t, b.LedAPin.Level())
}

// TestTick_DisconnectWaitIsBounded gives up on a link that never drops.
func TestTick_DisconnectWaitIsBounded(t *testing.T) {
	t.Parallel()

	p := air.NewPeer(addrP, "Find Me")
	b := virtual.NewBoard()
	clock := tick.NewManualClock(0)

	dev, err := New(context.Background(), Params{
		Board: &b.Board,
		Radio: air.New(air.WithPeers(p), air.WithDisconnectPolls(1_000_000)),
		Clock: clock,
	})
	require.NoError(t, err)

	start := clock.Millis()

	b.TapHigh()
	dev.Tick(context.Background())
	dev.Tick(context.Background())

	elapsed := time.Duration(clock.Millis()-start) * time.Millisecond
	require.GreaterOrEqual(t, elapsed, config.DefaultDisconnectTimeout)
	require.Less(t, elapsed, 2*config.DefaultDisconnectTimeout)

	count, _ := dev.ledger.Counter(addrP)
	require.Equal(t, uint8(1), count)
}
