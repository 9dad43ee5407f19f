package air

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/radio"
)

var (
	addrP = radio.MustParseAddress("AA:BB:CC:DD:EE:01")
	addrQ = radio.MustParseAddress("AA:BB:CC:DD:EE:02")
)

// TestScan_FiltersByServiceAndRange returns only reachable peers with the service.
func TestScan_FiltersByServiceAndRange(t *testing.T) {
	t.Parallel()

	p := NewPeer(addrP, "Find Me")
	q := NewPeer(addrQ, "Find Me")
	q.SetServices(0x180F)

	a := New(WithPeers(p, q))

	ads, err := a.Scan(context.Background(), radio.ImmediateAlertService, 0)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	require.Equal(t, addrP, ads[0].Address)
	require.Equal(t, "Find Me", ads[0].Name)

	p.SetReachable(false)

	ads, err = a.Scan(context.Background(), radio.ImmediateAlertService, 0)
	require.NoError(t, err)
	require.Empty(t, ads)
	require.Equal(t, 2, a.Scans())
}

// TestScan_CancelledContext fails without scanning.
func TestScan_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Scan(ctx, radio.ImmediateAlertService, 0)
	require.ErrorIs(t, err, context.Canceled)
}

// TestConnect_WriteAndDisconnect records writes and lingers after disconnect.
func TestConnect_WriteAndDisconnect(t *testing.T) {
	t.Parallel()

	p := NewPeer(addrP, "Find Me")
	a := New(WithPeers(p), WithDisconnectPolls(2))

	l, err := a.Connect(context.Background(), addrP, 0)
	require.NoError(t, err)
	require.Equal(t, addrP, l.Address())

	level, err := l.AlertLevel()
	require.NoError(t, err)
	require.NoError(t, level.Write(alert.High))
	require.Equal(t, alert.High, p.Level())

	require.NoError(t, l.Disconnect())
	require.True(t, l.Connected())
	require.True(t, l.Connected())
	require.False(t, l.Connected())

	require.ErrorIs(t, level.Write(alert.None), radio.ErrNotConnected)
	require.Equal(t, []alert.Severity{alert.High}, p.Writes())
}

// TestConnect_ScriptedFailures consumes scripted failures one by one.
func TestConnect_ScriptedFailures(t *testing.T) {
	t.Parallel()

	p := NewPeer(addrP, "Find Me")
	p.FailConnects(2)
	p.FailLookups(1)
	p.FailWrites(1)

	a := New(WithPeers(p))
	ctx := context.Background()

	for range 2 {
		_, err := a.Connect(ctx, addrP, 0)
		require.ErrorIs(t, err, radio.ErrConnectTimeout)
	}

	l, err := a.Connect(ctx, addrP, 0)
	require.NoError(t, err)

	_, err = l.AlertLevel()
	require.ErrorIs(t, err, radio.ErrServiceNotFound)

	level, err := l.AlertLevel()
	require.NoError(t, err)
	require.ErrorIs(t, level.Write(alert.Mild), ErrWriteRejected)
	require.NoError(t, level.Write(alert.Mild))
	require.Equal(t, []alert.Severity{alert.Mild}, p.Writes())

	_, err = a.Connect(ctx, addrQ, 0)
	require.ErrorIs(t, err, radio.ErrConnectTimeout)
}

// TestAdvertisingAndCentral ends advertising when a central connects.
func TestAdvertisingAndCentral(t *testing.T) {
	t.Parallel()

	a := New()
	require.NoError(t, a.StartAdvertising())
	require.True(t, a.Advertising())

	a.SetCentral(true)
	require.True(t, a.Connected())
	require.False(t, a.Advertising())

	a.SetCentral(false)
	require.False(t, a.Connected())
}

// TestLocalAlert stores injected writes until reset.
func TestLocalAlert(t *testing.T) {
	t.Parallel()

	a := New()
	require.Equal(t, alert.None, a.LocalAlert())

	a.WriteLocalAlert(alert.Mild)
	require.Equal(t, alert.Mild, a.LocalAlert())

	require.NoError(t, a.ResetLocalAlert())
	require.Equal(t, alert.None, a.LocalAlert())
}

// TestPeers adds, replaces and removes peers.
func TestPeers(t *testing.T) {
	t.Parallel()

	a := New(WithPeers(NewPeer(addrP, "one")))
	a.AddPeer(NewPeer(addrP, "two"))
	a.AddPeer(NewPeer(addrQ, "three"))

	peers := a.Peers()
	require.Len(t, peers, 2)
	require.Equal(t, "two", peers[0].Name())

	require.True(t, a.RemovePeer(addrP))
	require.False(t, a.RemovePeer(addrP))

	_, ok := a.Peer(addrP)
	require.False(t, ok)
}
